package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS splits (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    bill REAL NOT NULL,
    tip_percent REAL NOT NULL,
    people INTEGER NOT NULL CHECK (people >= 1),
    tip_per_person REAL NOT NULL,
    total_per_person REAL NOT NULL,
    rules TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_splits_created_at ON splits(created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
