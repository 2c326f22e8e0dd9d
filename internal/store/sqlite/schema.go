package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS system_lock (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    locked_by  TEXT,
    locked_at  TIMESTAMP
);

INSERT OR IGNORE INTO system_lock (id) VALUES (1);

CREATE TABLE IF NOT EXISTS daily_usage (
    day   TEXT PRIMARY KEY,
    used  INTEGER NOT NULL DEFAULT 0 CHECK (used >= 0)
);
`
