package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists gameplay history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS purchases (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			asset_id      INTEGER NOT NULL,
			asset_name    TEXT,
			count_after   INTEGER,
			cost          REAL,
			balance_after REAL,
			income_rate   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_ts ON purchases(timestamp)`,

		`CREATE TABLE IF NOT EXISTS bonus_claims (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			event_id      TEXT NOT NULL,
			kind          TEXT,
			reward        REAL,
			balance_after REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bonus_ts ON bonus_claims(timestamp)`,

		`CREATE TABLE IF NOT EXISTS multiplier_activations (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			seconds   INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			action            TEXT,
			balance           REAL,
			lifetime_earnings REAL,
			income_rate       REAL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPurchase(evt *PurchaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO purchases
		(timestamp, asset_id, asset_name, count_after, cost, balance_after, income_rate)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.AssetID, evt.AssetName, evt.CountAfter,
		evt.Cost, evt.BalanceAfter, evt.IncomeRate,
	)
	return err
}

func (r *SQLiteRecorder) RecordBonusClaim(evt *BonusClaimEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO bonus_claims
		(timestamp, event_id, kind, reward, balance_after)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.EventID, evt.Kind, evt.Reward, evt.BalanceAfter,
	)
	return err
}

func (r *SQLiteRecorder) RecordMultiplier(evt *MultiplierEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO multiplier_activations
		(timestamp, source, seconds) VALUES (?,?,?)`,
		time.Now().Unix(), evt.Source, evt.Seconds,
	)
	return err
}

func (r *SQLiteRecorder) RecordSession(evt *SessionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO sessions
		(timestamp, action, balance, lifetime_earnings, income_rate)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Action, evt.Balance, evt.LifetimeEarnings, evt.IncomeRate,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
