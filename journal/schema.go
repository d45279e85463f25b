package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	account_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	lines INTEGER NOT NULL,
	events INTEGER NOT NULL,
	records INTEGER NOT NULL,
	advisories INTEGER NOT NULL,
	total_pl REAL NOT NULL,
	final_balance REAL
);

CREATE TABLE IF NOT EXISTS records (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	seq INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	order_id INTEGER,
	action TEXT NOT NULL,
	direction TEXT NOT NULL,
	type TEXT NOT NULL,
	instrument TEXT NOT NULL,
	volume REAL,
	price REAL,
	tp REAL,
	sl REAL,
	notes TEXT NOT NULL,
	balance_after_close REAL,
	pl REAL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS advisories (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	seq INTEGER NOT NULL,
	severity TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	line INTEGER NOT NULL,
	message TEXT NOT NULL,
	order_ids TEXT NOT NULL DEFAULT '',
	delta REAL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_records_order ON records(run_id, order_id);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
