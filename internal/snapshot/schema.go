package snapshot

import (
	"database/sql"
	"fmt"
)

const ddl = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS chunks (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id      TEXT NOT NULL UNIQUE,
    file_path     TEXT NOT NULL,
    kind          TEXT NOT NULL,
    name          TEXT NOT NULL DEFAULT '',
    start_line    INTEGER NOT NULL,
    end_line      INTEGER NOT NULL,
    start_column  INTEGER NOT NULL,
    end_column    INTEGER NOT NULL,
    content_hash  TEXT NOT NULL,
    content       TEXT NOT NULL,
    metadata      TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS chunks_file_path ON chunks(file_path);

CREATE TABLE IF NOT EXISTS groups (
    id              INTEGER PRIMARY KEY,
    kind            TEXT NOT NULL,
    avg_similarity  REAL NOT NULL,
    member_count    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id        INTEGER NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
    position        INTEGER NOT NULL,
    chunk_id        INTEGER NOT NULL REFERENCES chunks(id),
    similarity      REAL,
    size_ratio      REAL,
    combined_score  REAL,
    PRIMARY KEY (group_id, position)
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// vecDDL holds one embedding per chunk row. The dimension is fixed per run.
const vecDDL = `
CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding float[%d]
);
`

// Init creates the schema. dim is the embedding dimension; zero skips the
// vector table.
func Init(db *sql.DB, dim int) error {
	if _, err := db.Exec(ddl); err != nil {
		return err
	}
	if dim > 0 {
		if _, err := db.Exec(fmt.Sprintf(vecDDL, dim)); err != nil {
			return err
		}
	}
	return nil
}
