// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinefeed/internal/logging"
	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/models"
)

// GenreStore looks up and creates genres. Names are stored lowercase and
// trimmed, so lookups ignore case.
type GenreStore struct {
	db *DB
}

func normalizeGenreName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindByName returns the genre with the given name or models.ErrNotFound.
func (s *GenreStore) FindByName(ctx context.Context, name string) (*models.GenreRecord, error) {
	name = normalizeGenreName(name)
	if name == "" {
		return nil, models.ErrNotFound
	}

	start := time.Now()
	var g models.GenreRecord
	err := s.db.conn.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE name = ?`, name).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("find", "genres", time.Since(start), nil)
		return nil, models.ErrNotFound
	}
	metrics.RecordDBQuery("find", "genres", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to load genre %q: %w", name, err)
	}
	return &g, nil
}

// FindOrCreate returns the named genre, inserting it first if absent.
func (s *GenreStore) FindOrCreate(ctx context.Context, name string) (*models.GenreRecord, error) {
	name = normalizeGenreName(name)
	if name == "" {
		return nil, fmt.Errorf("genre name is empty")
	}

	start := time.Now()
	_, err := s.db.conn.ExecContext(ctx, `INSERT INTO genres (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	metrics.RecordDBQuery("insert", "genres", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create genre %q: %w", name, err)
	}
	return s.FindByName(ctx, name)
}

// All returns every stored genre ordered by id.
func (s *GenreStore) All(ctx context.Context) ([]models.GenreRecord, error) {
	start := time.Now()
	rows, err := s.db.conn.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		metrics.RecordDBQuery("list", "genres", time.Since(start), err)
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer closeWithLog(rows, "rows")

	genres := make([]models.GenreRecord, 0)
	for rows.Next() {
		var g models.GenreRecord
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	err = rows.Err()
	metrics.RecordDBQuery("list", "genres", time.Since(start), err)
	return genres, err
}

// Seed ensures every name exists. It returns how many were newly created.
func (s *GenreStore) Seed(ctx context.Context, names []string) (int, error) {
	before, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		if _, err := s.FindOrCreate(ctx, name); err != nil {
			return 0, err
		}
	}
	after, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	created := len(after) - len(before)
	logging.Info().Int("created", created).Int("total", len(after)).Msg("Genre table seeded")
	return created, nil
}
