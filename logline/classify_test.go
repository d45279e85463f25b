package logline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "2024.01.01 10:00:00.000 "

func TestClassifyEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		kind Kind
	}{
		{"empty", "", NotALogLine},
		{"garbage", "hello world", NotALogLine},
		{"bad level", prefix + "Info '123': account balance 1000.00 USD", NotALogLine},
		{"unquoted account", prefix + "Service 123: account balance 1000.00 USD", NotALogLine},
		{"short millis", "2024.01.01 10:00:00.00 Service '123': account balance 1000.00 USD", NotALogLine},
		{"debug is noise", prefix + "Debug '123': open event #1 buy 1.00 lots EURUSD at 1.1000", Unrecognized},
		{"unknown service message", prefix + "Service '123': connection established", Unrecognized},
		{"unknown trade message", prefix + "Trade '123': ping", Unrecognized},
		{"surrounding whitespace", "  \t" + prefix + "Service '123': account balance 1000.00 USD \r", ServiceBalanceInit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := Classify(7, tt.line)
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, 7, ev.Line)
		})
	}
}

func TestClassifyEnvelopeFields(t *testing.T) {
	t.Parallel()

	ev := Classify(1, "2024.03.15 14:20:30.125 User_action '5551234': request close all orders positions")
	assert.Equal(t, CloseAllRequested, ev.Kind)
	assert.Equal(t, "2024.03.15 14:20:30.125", ev.Timestamp)
	assert.Equal(t, LevelUserAction, ev.Level)
	assert.Equal(t, "5551234", ev.AccountID)
	assert.Equal(t, "request close all orders positions", ev.Message)
}

func TestClassifyBalances(t *testing.T) {
	t.Parallel()

	ev := Classify(1, prefix+"Service '123': account balance 1000.50 USD")
	require.Equal(t, ServiceBalanceInit, ev.Kind)
	assert.InDelta(t, 1000.50, ev.Balance, 1e-9)

	ev = Classify(2, prefix+"Trade '123': upd account info balance 1005.25")
	require.Equal(t, TradeBalanceUpdate, ev.Kind)
	assert.InDelta(t, 1005.25, ev.Balance, 1e-9)

	// Balance patterns are searched anywhere in the message.
	ev = Classify(3, prefix+"Trade '123': info: upd account info balance 990 (margin 10)")
	require.Equal(t, TradeBalanceUpdate, ev.Kind)
	assert.InDelta(t, 990.0, ev.Balance, 1e-9)

	// A Service balance pattern under Trade is not a Trade event.
	ev = Classify(4, prefix+"Trade '123': account balance 1000.00 USD")
	assert.Equal(t, Unrecognized, ev.Kind)
}

func TestClassifyModify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  string
		kind string
	}{
		{"limit", "modify event #42 sell limit 0.50 lots GBPUSD at 1.2700 tp: 1.2600 sl: 1.2750", "limit"},
		{"stop", "modify event #42 sell stop 0.50 lots GBPUSD at 1.2700 tp: 1.2600 sl: 1.2750", "stop"},
		{"no kind double space", "modify event #42 sell  0.50 lots GBPUSD at 1.2700 tp: 1.2600 sl: 1.2750", ""},
		{"no kind single space", "modify event #42 sell 0.50 lots GBPUSD at 1.2700 tp: 1.2600 sl: 1.2750", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := Classify(1, prefix+"Trade '123': "+tt.msg)
			require.Equal(t, OrderPlacedOrModified, ev.Kind)
			assert.Equal(t, int64(42), ev.OrderID)
			assert.Equal(t, "sell", ev.Direction)
			assert.Equal(t, tt.kind, ev.OrderKind)
			assert.InDelta(t, 0.50, ev.Volume, 1e-9)
			assert.Equal(t, "GBPUSD", ev.Instrument)
			assert.InDelta(t, 1.27, ev.Price, 1e-9)
			assert.InDelta(t, 1.26, ev.TakeProfit, 1e-9)
			assert.InDelta(t, 1.275, ev.StopLoss, 1e-9)
		})
	}
}

func TestClassifyOpenAndClose(t *testing.T) {
	t.Parallel()

	ev := Classify(1, prefix+"Trade '123': open event #1 buy 1.00 lots EURUSD at 1.1000")
	require.Equal(t, OrderOpened, ev.Kind)
	assert.Equal(t, int64(1), ev.OrderID)
	assert.Equal(t, "buy", ev.Direction)
	assert.InDelta(t, 1.0, ev.Volume, 1e-9)
	assert.Equal(t, "EURUSD", ev.Instrument)
	assert.InDelta(t, 1.1, ev.Price, 1e-9)

	ev = Classify(2, prefix+"Trade '123': close event #1 buy 1.00 lots EURUSD at 1.1050 by tp")
	require.Equal(t, OrderClosed, ev.Kind)
	assert.Equal(t, int64(1), ev.OrderID)
	assert.InDelta(t, 1.105, ev.Price, 1e-9)
	assert.Equal(t, "tp", ev.ClosedBy)

	// Without the closing reason it is not a close.
	ev = Classify(3, prefix+"Trade '123': close event #1 buy 1.00 lots EURUSD at 1.1050")
	assert.Equal(t, Unrecognized, ev.Kind)
}

func TestClassifyCloseAll(t *testing.T) {
	t.Parallel()

	ev := Classify(1, prefix+"Trade '123': success close #9 buy 1.00 lots EURUSD at 1.1000 at 1.10420")
	require.Equal(t, CloseAllConfirmed, ev.Kind)
	assert.Equal(t, int64(9), ev.OrderID)
	assert.Equal(t, "buy 1.00 lots EURUSD at 1.1000", ev.Details)
	assert.InDelta(t, 1.1042, ev.Price, 1e-9)
	assert.Equal(t, "1.10420", ev.PriceText)

	ev = Classify(2, prefix+"Trade '123': close 2 from 3 {#9, #10}")
	require.Equal(t, CloseAllSummary, ev.Kind)
	assert.Equal(t, 2, ev.Closed)
	assert.Equal(t, 3, ev.Total)

	ev = Classify(3, prefix+"User_action '123': request close all orders positions")
	assert.Equal(t, CloseAllRequested, ev.Kind)
	assert.Zero(t, ev.OrderID)
}

func TestClassifyDeletes(t *testing.T) {
	t.Parallel()

	ev := Classify(1, prefix+"User_action '123': request delete #77 sell limit 0.10 lots XAUUSD")
	require.Equal(t, DeleteRequested, ev.Kind)
	assert.Equal(t, int64(77), ev.OrderID)
	assert.Equal(t, "sell limit 0.10 lots XAUUSD", ev.Details)

	ev = Classify(2, prefix+"User_action '123': success delete #77 sell limit 0.10 lots XAUUSD")
	require.Equal(t, DeleteConfirmed, ev.Kind)
	assert.Equal(t, int64(77), ev.OrderID)

	// User actions only match at their own level.
	ev = Classify(3, prefix+"Trade '123': request delete #77 sell limit")
	assert.Equal(t, Unrecognized, ev.Kind)
}

func TestClassifyMalformedNumbers(t *testing.T) {
	t.Parallel()

	lines := []string{
		prefix + "Service '123': account balance 1.000.00 USD",
		prefix + "Trade '123': upd account info balance .",
		prefix + "Trade '123': open event #1 buy 1..0 lots EURUSD at 1.1000",
		prefix + "Trade '123': close event #1 buy 1.00 lots EURUSD at 1.1.050 by sl",
		prefix + "Trade '123': open event #99999999999999999999 buy 1.00 lots EURUSD at 1.1000",
		prefix + "Trade '123': modify event #4 buy limit 1.00 lots EURUSD at 1.1 tp: 1.2.3 sl: 1.0",
	}
	for _, line := range lines {
		ev := Classify(1, line)
		assert.Equal(t, Unrecognized, ev.Kind, line)
		assert.Zero(t, ev.OrderID, line)
		assert.Zero(t, ev.Balance, line)
		assert.Empty(t, ev.Instrument, line)
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OrderClosed", OrderClosed.String())
	assert.Equal(t, "NotALogLine", NotALogLine.String())
	assert.Equal(t, "Kind(?)", Kind(99).String())
	assert.True(t, OrderOpened.Recognized())
	assert.False(t, Unrecognized.Recognized())
	assert.False(t, NotALogLine.Recognized())
}
