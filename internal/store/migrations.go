package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dispatches (
	id         TEXT PRIMARY KEY,
	subject    TEXT NOT NULL DEFAULT '',
	from_addr  TEXT NOT NULL,
	recipients TEXT NOT NULL,
	host       TEXT NOT NULL,
	status     TEXT NOT NULL CHECK(status IN ('sent', 'failed')),
	detail     TEXT NOT NULL DEFAULT '',
	sent_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_dispatches_sent_at ON dispatches(sent_at);
CREATE INDEX IF NOT EXISTS idx_dispatches_status ON dispatches(status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
