package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		image TEXT,
		custody_user_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		owner_user_id TEXT NOT NULL,
		address TEXT UNIQUE NOT NULL,
		public_key TEXT NOT NULL,
		encrypted_mnemonic TEXT,
		custody_handle TEXT,
		created_at DATETIME
	);`)
}

func createCreatorTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE creators (
		id TEXT PRIMARY KEY,
		user_id TEXT UNIQUE NOT NULL,
		username TEXT UNIQUE NOT NULL,
		display_name TEXT NOT NULL,
		bio TEXT,
		avatar_url TEXT,
		stacks_address TEXT NOT NULL,
		total_tips_micro_stx INTEGER NOT NULL DEFAULT 0,
		total_tips_usd NUMERIC NOT NULL DEFAULT 0,
		tip_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTipTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tips (
		id TEXT PRIMARY KEY,
		creator_id TEXT NOT NULL,
		tipper_email TEXT NOT NULL,
		tipper_address TEXT,
		amount_micro_stx INTEGER NOT NULL,
		amount_usd NUMERIC NOT NULL,
		tx_hash TEXT,
		status TEXT NOT NULL,
		message TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
