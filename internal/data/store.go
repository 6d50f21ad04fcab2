package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var ErrProfileNotFound = errors.New("profile not found")

// Medal represents metadata for an achievement.
type Medal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var Medals = map[string]Medal{
	"first_win": {ID: "first_win", Name: "First Blood", Description: "Win your first match."},
	"flawless":  {ID: "flawless", Name: "Untouched", Description: "Win without your tower taking damage."},
	"overtime":  {ID: "overtime", Name: "Last Tower Standing", Description: "Win a match in sudden death."},
	"stalemate": {ID: "stalemate", Name: "Stalemate", Description: "Fight a match to a draw."},
}

// Profile is the public-facing player record.
type Profile struct {
	ID       string   `json:"id"`
	Nickname string   `json:"nickname"`
	Trophies int      `json:"trophies"`
	Wins     int      `json:"wins"`
	Losses   int      `json:"losses"`
	Draws    int      `json:"draws"`
	Medals   []string `json:"medals"`
}

// Store persists player profiles in Postgres.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// NewStore accepts an existing DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open builds the store from a connection string (e.g. os.Getenv("DATABASE_URL"))
// and creates the schema if needed.
func Open(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := NewStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	nickname   TEXT NOT NULL,
	trophies   INTEGER NOT NULL DEFAULT 0,
	wins       INTEGER NOT NULL DEFAULT 0,
	losses     INTEGER NOT NULL DEFAULT 0,
	draws      INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS profile_medals (
	profile_id TEXT NOT NULL REFERENCES profiles(id),
	medal_id   TEXT NOT NULL,
	PRIMARY KEY (profile_id, medal_id)
);`

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// EnsureProfile returns the profile for id, creating it first if needed. An
// empty id gets a fresh one.
func (s *Store) EnsureProfile(ctx context.Context, id, nickname string) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = "u_" + uuid.NewString()
	}
	if nickname == "" {
		nickname = id
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, nickname)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, nickname); err != nil {
		return Profile{}, fmt.Errorf("insert profile %s: %w", id, err)
	}
	return s.Profile(ctx, id)
}

// Profile returns a single profile by ID.
func (s *Store) Profile(ctx context.Context, id string) (Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, nickname, trophies, wins, losses, draws
		FROM profiles
		WHERE id = $1
	`, id)

	var p Profile
	if err := row.Scan(&p.ID, &p.Nickname, &p.Trophies, &p.Wins, &p.Losses, &p.Draws); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}

	medals, err := s.medalIDs(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p.Medals = medals
	return p, nil
}

func (s *Store) medalIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT medal_id FROM profile_medals WHERE profile_id = $1 ORDER BY medal_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		ids = append(ids, m)
	}
	return ids, rows.Err()
}

// RecordResult applies one finished match to a profile: trophies, tallies and
// any medals it earned.
func (s *Store) RecordResult(ctx context.Context, id string, r Result) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.Profile(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Profile{}, err
	}
	defer tx.Rollback()

	w, l, d := r.tally()
	if _, err := tx.ExecContext(ctx, `
		UPDATE profiles
		SET trophies = GREATEST(0, trophies + $1),
		    wins = wins + $2,
		    losses = losses + $3,
		    draws = draws + $4,
		    updated_at = NOW()
		WHERE id = $5
	`, TrophyDelta(r.Outcome), w, l, d, id); err != nil {
		return Profile{}, fmt.Errorf("update profile %s: %w", id, err)
	}

	for _, m := range medalsFor(before, r) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profile_medals (profile_id, medal_id)
			VALUES ($1, $2)
			ON CONFLICT (profile_id, medal_id) DO NOTHING
		`, id, m); err != nil {
			return Profile{}, fmt.Errorf("insert medal %s: %w", m, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Profile{}, err
	}
	return s.Profile(ctx, id)
}
