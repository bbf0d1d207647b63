package journal

// Schema holds every intent, approved or not. Rejections are also kept in
// their own table with the limit that tripped.
const Schema = `
CREATE TABLE IF NOT EXISTS intents (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	signal TEXT NOT NULL,
	strategy TEXT NOT NULL,
	price REAL NOT NULL,
	notional REAL NOT NULL,
	approved INTEGER NOT NULL,
	rejection_reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_intents_symbol_time ON intents(symbol, time);

CREATE TABLE IF NOT EXISTS rejections (
	intent_id TEXT PRIMARY KEY REFERENCES intents(id),
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	kind TEXT NOT NULL,
	current_ratio REAL NOT NULL,
	limit_ratio REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rejections_time ON rejections(time);
`
