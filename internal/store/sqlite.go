package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vrp-import/internal/location"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	lat        REAL,
	lon        REAL,
	created_at TEXT NOT NULL
)`

// SQLStore is a LocationStore backed by SQLite.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQL opens (and if needed creates) the SQLite database at dsn, e.g. a
// file path or "file::memory:".
func OpenSQL(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps in-memory databases alive and serializes writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &SQLStore{db: db, now: time.Now}, nil
}

// List implements LocationStore.
func (s *SQLStore) List(ctx context.Context) ([]location.Existing, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, address, lat, lon FROM locations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []location.Existing

	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("list locations: %w", err)
		}

		out = append(out, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	return out, nil
}

// Get implements LocationStore.
func (s *SQLStore) Get(ctx context.Context, id string) (location.Existing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, address, lat, lon FROM locations WHERE id = ?`, id)

	loc, err := scanLocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return location.Existing{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	if err != nil {
		return location.Existing{}, fmt.Errorf("get location %s: %w", id, err)
	}

	return loc, nil
}

// Create implements LocationStore.
func (s *SQLStore) Create(ctx context.Context, nl location.NewLocation) (location.Existing, error) {
	loc := fromNew(uuid.NewString(), nl)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, name, address, lat, lon, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		loc.ID, loc.Name, loc.Address, nullFloat(loc.Lat), nullFloat(loc.Lon),
		s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return location.Existing{}, fmt.Errorf("create location %q: %w", nl.Name, err)
	}

	return loc, nil
}

// Close implements LocationStore.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLocation(sc scanner) (location.Existing, error) {
	var (
		loc      location.Existing
		lat, lon sql.NullFloat64
	)

	if err := sc.Scan(&loc.ID, &loc.Name, &loc.Address, &lat, &lon); err != nil {
		return location.Existing{}, err
	}

	if lat.Valid {
		loc.Lat = &lat.Float64
	}

	if lon.Valid {
		loc.Lon = &lon.Float64
	}

	return loc, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *f, Valid: true}
}
