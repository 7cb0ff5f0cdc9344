package mysql

// Note: `key` is reserved; keep it quoted everywhere.
const createKVSQL = "CREATE TABLE IF NOT EXISTS planner_kv (\n" +
	"  `key`      VARCHAR(191) NOT NULL PRIMARY KEY,\n" +
	"  value      LONGBLOB     NOT NULL,\n" +
	"  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

// Use VALUES(col) for broad compatibility.
const upsertKVSQL = "INSERT INTO planner_kv (`key`, value)\nVALUES (?, ?)\n" +
	"ON DUPLICATE KEY UPDATE\n" +
	"  value      = VALUES(value),\n" +
	"  updated_at = CURRENT_TIMESTAMP"

const getKVSQL = "SELECT value FROM planner_kv WHERE `key` = ?"

const deleteKVSQL = "DELETE FROM planner_kv WHERE `key` = ?"

const listKeysSQL = "SELECT `key` FROM planner_kv ORDER BY `key`"

const clearKVSQL = "DELETE FROM planner_kv"
