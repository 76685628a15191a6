// Package store persists save profiles in a fixed number of SQLite-backed slots.
// Each profile is stored as a zstd-compressed JSON blob keyed by an opaque id.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/napolitain/tycoon/internal/converter"
	"github.com/napolitain/tycoon/internal/models"
)

var (
	ErrNotFound  = errors.New("save slot not found")
	ErrSlotsFull = errors.New("all save slots are in use")
)

// Slot is one persisted save profile
type Slot struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Profile   models.SaveProfile
}

// Store is a save-slot repository. It is safe for concurrent use.
type Store struct {
	db       *sql.DB
	maxSlots int
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// Open opens (or creates) the database at path and applies pending migrations.
// maxSlots <= 0 uses models.DefaultMaxSaveSlots.
func Open(ctx context.Context, path string, maxSlots int) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if maxSlots <= 0 {
		maxSlots = models.DefaultMaxSaveSlots
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, maxSlots: maxSlots, enc: enc, dec: dec}, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

// MaxSlots returns the slot limit
func (s *Store) MaxSlots() int {
	return s.maxSlots
}

// Close releases the database and codec resources
func (s *Store) Close() error {
	s.dec.Close()
	_ = s.enc.Close()
	return s.db.Close()
}

func (s *Store) encode(p models.SaveProfile) ([]byte, error) {
	raw, err := converter.EncodeProfile(p)
	if err != nil {
		return nil, err
	}
	return s.enc.EncodeAll(raw, nil), nil
}

func (s *Store) decode(blob []byte) (models.SaveProfile, error) {
	raw, err := s.dec.DecodeAll(blob, nil)
	if err != nil {
		return models.SaveProfile{}, fmt.Errorf("failed to decompress profile: %w", err)
	}
	return converter.DecodeProfile(raw)
}

// Create stores profile in a new slot. It fails with ErrSlotsFull when every slot is used.
func (s *Store) Create(ctx context.Context, profile models.SaveProfile) (Slot, error) {
	blob, err := s.encode(profile)
	if err != nil {
		return Slot{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Slot{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var used int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM save_slots`).Scan(&used); err != nil {
		return Slot{}, fmt.Errorf("failed to count slots: %w", err)
	}
	if used >= s.maxSlots {
		return Slot{}, ErrSlotsFull
	}

	slot := Slot{
		ID:        uuid.NewString(),
		CreatedAt: profile.CreatedAt.UTC(),
		UpdatedAt: profile.CreatedAt.UTC(),
		Profile:   profile.Clone(),
	}
	stamp := converter.FormatTime(slot.CreatedAt)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO save_slots (id, created_at, updated_at, profile) VALUES (?, ?, ?, ?)`,
		slot.ID, stamp, stamp, blob,
	); err != nil {
		return Slot{}, fmt.Errorf("failed to insert slot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// Get loads one slot
func (s *Store) Get(ctx context.Context, id string) (Slot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, profile FROM save_slots WHERE id = ?`, id)
	slot, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return slot, err
}

// Update overwrites the profile stored in a slot
func (s *Store) Update(ctx context.Context, id string, profile models.SaveProfile) error {
	blob, err := s.encode(profile)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE save_slots SET profile = ?, updated_at = ? WHERE id = ?`,
		blob, converter.FormatTime(profile.CreatedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update slot %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

// Delete frees a slot
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM save_slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

// List returns every slot in creation order
func (s *Store) List(ctx context.Context) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, updated_at, profile FROM save_slots ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		slot, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (Slot, error) {
	var (
		slot             Slot
		created, updated string
		blob             []byte
	)
	if err := row.Scan(&slot.ID, &created, &updated, &blob); err != nil {
		return Slot{}, err
	}

	var err error
	if slot.CreatedAt, err = converter.ParseTime(created); err != nil {
		return Slot{}, fmt.Errorf("slot %s: %w", slot.ID, err)
	}
	if slot.UpdatedAt, err = converter.ParseTime(updated); err != nil {
		return Slot{}, fmt.Errorf("slot %s: %w", slot.ID, err)
	}
	if slot.Profile, err = s.decode(blob); err != nil {
		return Slot{}, fmt.Errorf("slot %s: %w", slot.ID, err)
	}
	return slot, nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
