package store

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/PikaChewey/Sharpey/internal/model"
)

const (
	settingUsername = "username"
	settingTested   = "portfolios_tested"
)

// SQLiteStore persists the leaderboard to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS portfolios (
			id           TEXT PRIMARY KEY,
			username     TEXT NOT NULL,
			stock1       TEXT NOT NULL,
			stock2       TEXT NOT NULL,
			weight       INTEGER NOT NULL,
			sharpe_ratio REAL NOT NULL,
			saved_at     INTEGER NOT NULL,
			UNIQUE(stock1, stock2, weight)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolios_sharpe ON portfolios(sharpe_ratio)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Save(p *model.SavedPortfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Username == "" {
		p.Username = DefaultUsername
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	_, err := s.db.Exec(`INSERT INTO portfolios
		(id, username, stock1, stock2, weight, sharpe_ratio, saved_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(stock1, stock2, weight) DO UPDATE SET
			id           = excluded.id,
			username     = excluded.username,
			sharpe_ratio = excluded.sharpe_ratio,
			saved_at     = excluded.saved_at`,
		p.ID, p.Username, p.Stock1, p.Stock2, p.Weight, p.SharpeRatio, p.Date.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}

	_, err = s.db.Exec(`DELETE FROM portfolios WHERE id NOT IN (
		SELECT id FROM portfolios ORDER BY sharpe_ratio DESC, saved_at ASC LIMIT ?)`,
		LeaderboardCap,
	)
	if err != nil {
		return fmt.Errorf("trim leaderboard: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List() ([]*model.SavedPortfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, username, stock1, stock2, weight, sharpe_ratio, saved_at
		FROM portfolios ORDER BY sharpe_ratio DESC, saved_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	defer rows.Close()

	var out []*model.SavedPortfolio
	for rows.Next() {
		var p model.SavedPortfolio
		var savedAt int64
		if err := rows.Scan(&p.ID, &p.Username, &p.Stock1, &p.Stock2, &p.Weight, &p.SharpeRatio, &savedAt); err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		p.Date = time.Unix(savedAt, 0).UTC()
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Username() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, settingUsername).Scan(&name)
	if err == sql.ErrNoRows {
		return DefaultUsername, nil
	}
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}
	return name, nil
}

func (s *SQLiteStore) SetUsername(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = DefaultUsername
	}
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingUsername, name,
	)
	if err != nil {
		return fmt.Errorf("set username: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IncrementTested() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, '1')
		ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)`,
		settingTested,
	)
	if err != nil {
		return 0, fmt.Errorf("increment tested counter: %w", err)
	}
	return s.readTested()
}

func (s *SQLiteStore) Tested() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTested()
}

func (s *SQLiteStore) readTested() (int64, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, settingTested).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read tested counter: %w", err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tested counter %q: %w", raw, err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
