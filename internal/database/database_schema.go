// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS movies_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS genres_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT PRIMARY KEY DEFAULT nextval('movies_id_seq'),
		film_id BIGINT NOT NULL UNIQUE,
		name VARCHAR NOT NULL,
		year INTEGER,
		rating DOUBLE,
		description VARCHAR,
		created_at TIMESTAMP DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id BIGINT PRIMARY KEY DEFAULT nextval('genres_id_seq'),
		name VARCHAR NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id BIGINT NOT NULL,
		genre_id BIGINT NOT NULL,
		PRIMARY KEY (movie_id, genre_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_rating ON movies(rating)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_year ON movies(year)`,
	`CREATE INDEX IF NOT EXISTS idx_movie_genres_genre ON movie_genres(genre_id)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
