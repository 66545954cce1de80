// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	fill_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	side TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	cash_after REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_symbol ON fills(symbol);

CREATE TABLE IF NOT EXISTS cash (
	time DATETIME NOT NULL,
	previous REAL NOT NULL,
	balance REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cash_time ON cash(time);
`
