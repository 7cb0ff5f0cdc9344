package sqlite

const createKVSQL = `
CREATE TABLE IF NOT EXISTS kv (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`

const upsertKVSQL = `
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET
  value      = excluded.value,
  updated_at = CURRENT_TIMESTAMP
`

const getKVSQL = `SELECT value FROM kv WHERE key = ?`

const deleteKVSQL = `DELETE FROM kv WHERE key = ?`

const listKeysSQL = `SELECT key FROM kv ORDER BY key`

const clearKVSQL = `DELETE FROM kv`
