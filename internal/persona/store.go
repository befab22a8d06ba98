package persona

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/neo/rapbattle_backend/internal/logging"
)

// Store is the persistence contract for persona records.
type Store interface {
	List() ([]Persona, error)
	Get(name string) (*Persona, error)
	Upsert(p Persona) error
	SeedIfEmpty(names []string) error
	RecordOutcome(winner, loser string) error
	Leaderboard(limit int) ([]LeaderboardEntry, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS personas (
	name          TEXT PRIMARY KEY,
	wins          INTEGER NOT NULL DEFAULT 0,
	losses        INTEGER NOT NULL DEFAULT 0,
	total_debates INTEGER NOT NULL DEFAULT 0,
	version       INTEGER NOT NULL DEFAULT 0
);
`

// SQLStore keeps persona records in a sqlite database.
type SQLStore struct {
	db *sql.DB

	// nameLocks serializes read-modify-write cycles per persona name so
	// concurrent outcomes touching the same persona never lose increments.
	nameLocksMu sync.Mutex
	nameLocks   map[string]*sync.Mutex
}

// NewSQLStore opens (creating if needed) the persona database under dataDir.
func NewSQLStore(dataDir string) (*SQLStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "personas.db")
	// Busy timeout keeps concurrent outcome transactions from failing
	// with SQLITE_BUSY while another writer holds the file lock.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}

	return &SQLStore{
		db:        db,
		nameLocks: make(map[string]*sync.Mutex),
	}, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// lockFor returns the mutex guarding one persona name.
func (s *SQLStore) lockFor(name string) *sync.Mutex {
	s.nameLocksMu.Lock()
	defer s.nameLocksMu.Unlock()
	mu, ok := s.nameLocks[name]
	if !ok {
		mu = &sync.Mutex{}
		s.nameLocks[name] = mu
	}
	return mu
}

// List returns all personas ordered by name.
func (s *SQLStore) List() ([]Persona, error) {
	rows, err := s.db.Query(`SELECT name, wins, losses, total_debates FROM personas ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query personas: %v", err)
	}
	defer rows.Close()

	var personas []Persona
	for rows.Next() {
		var p Persona
		if err := rows.Scan(&p.Name, &p.Wins, &p.Losses, &p.TotalDebates); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %v", err)
		}
		personas = append(personas, p)
	}
	return personas, rows.Err()
}

// Get returns one persona or ErrNotFound.
func (s *SQLStore) Get(name string) (*Persona, error) {
	var p Persona
	err := s.db.QueryRow(
		`SELECT name, wins, losses, total_debates FROM personas WHERE name = ?`, name,
	).Scan(&p.Name, &p.Wins, &p.Losses, &p.TotalDebates)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get persona: %v", err)
	}
	return &p, nil
}

// Upsert inserts or replaces a persona record, bumping its version.
func (s *SQLStore) Upsert(p Persona) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}

	mu := s.lockFor(p.Name)
	mu.Lock()
	defer mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO personas (name, wins, losses, total_debates, version)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(name) DO UPDATE SET
			wins = excluded.wins,
			losses = excluded.losses,
			total_debates = excluded.total_debates,
			version = personas.version + 1`,
		p.Name, p.Wins, p.Losses, p.TotalDebates)
	if err != nil {
		return fmt.Errorf("failed to upsert persona: %v", err)
	}

	logging.LogStoreEvent("upsert", map[string]interface{}{"name": p.Name})
	return nil
}

// SeedIfEmpty inserts personas with zeroed counters only when the store
// holds none.
func (s *SQLStore) SeedIfEmpty(names []string) error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM personas`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count personas: %v", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %v", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO personas (name, wins, losses, total_debates, version) VALUES (?, 0, 0, 0, 1)`,
			name); err != nil {
			return fmt.Errorf("failed to seed persona %s: %v", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %v", err)
	}

	logging.LogStoreEvent("seed", map[string]interface{}{"count": len(names)})
	return nil
}

// RecordOutcome increments the winner's wins and the loser's losses, plus
// both total counters, in one transaction. Locks are taken in name order
// so two overlapping outcomes can never deadlock.
func (s *SQLStore) RecordOutcome(winner, loser string) error {
	if winner == loser {
		return fmt.Errorf("winner and loser must differ: %s", winner)
	}

	first, second := winner, loser
	if second < first {
		first, second = second, first
	}
	firstMu, secondMu := s.lockFor(first), s.lockFor(second)
	firstMu.Lock()
	defer firstMu.Unlock()
	secondMu.Lock()
	defer secondMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin outcome transaction: %v", err)
	}
	defer tx.Rollback()

	for _, name := range []string{winner, loser} {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM personas WHERE name = ?`, name).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check persona %s: %v", name, err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}

	if _, err := tx.Exec(
		`UPDATE personas SET wins = wins + 1, total_debates = total_debates + 1, version = version + 1 WHERE name = ?`,
		winner); err != nil {
		return fmt.Errorf("failed to record win for %s: %v", winner, err)
	}
	if _, err := tx.Exec(
		`UPDATE personas SET losses = losses + 1, total_debates = total_debates + 1, version = version + 1 WHERE name = ?`,
		loser); err != nil {
		return fmt.Errorf("failed to record loss for %s: %v", loser, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outcome: %v", err)
	}

	logging.LogStoreEvent("record_outcome", map[string]interface{}{
		"winner": winner,
		"loser":  loser,
	})
	return nil
}

// Leaderboard returns up to limit personas sorted by win percentage desc,
// then wins desc, then losses asc. Limit is capped at 10.
func (s *SQLStore) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}

	personas, err := s.List()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(personas))
	for _, p := range personas {
		entries = append(entries, LeaderboardEntry{
			Name:   p.Name,
			Wins:   p.Wins,
			Losses: p.Losses,
			Total:  p.TotalDebates,
			WinPct: p.WinPct(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WinPct != entries[j].WinPct {
			return entries[i].WinPct > entries[j].WinPct
		}
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Losses < entries[j].Losses
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
