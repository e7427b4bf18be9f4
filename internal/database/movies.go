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

	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/models"
)

// MovieStore persists movies and their genre links.
type MovieStore struct {
	db *DB
}

const movieColumns = `id, film_id, name, year, rating, description`

// sortColumns maps API sort keys onto columns. Only these values ever reach SQL.
var sortColumns = map[string]string{
	models.SortFilmID:   "film_id",
	models.SortFilmName: "name",
	models.SortYear:     "year",
	models.SortRating:   "rating",
}

// ExistsByFilmID reports whether a movie with the catalog film id is stored.
func (s *MovieStore) ExistsByFilmID(ctx context.Context, filmID int64) (bool, error) {
	start := time.Now()
	var exists bool
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM movies WHERE film_id = ?)`, filmID).Scan(&exists)
	metrics.RecordDBQuery("exists", "movies", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to check film %d: %w", filmID, err)
	}
	return exists, nil
}

// Save inserts a movie and its genre links in one transaction and sets
// m.ID. It returns models.ErrDuplicateFilm when the film id is already stored.
func (s *MovieStore) Save(ctx context.Context, m *models.MovieRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("save", "movies", time.Since(start), err) }()

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO movies (film_id, name, year, rating, description) VALUES (?, ?, ?, ?, ?) RETURNING id`,
		m.FilmID, m.Title, m.Year, m.Rating, m.Description,
	).Scan(&id)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("film %d: %w", m.FilmID, models.ErrDuplicateFilm)
		}
		return fmt.Errorf("failed to insert film %d: %w", m.FilmID, err)
	}

	seen := make(map[int64]struct{}, len(m.Genres))
	for _, g := range m.Genres {
		if _, dup := seen[g.ID]; dup {
			continue
		}
		seen[g.ID] = struct{}{}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`, id, g.ID); err != nil {
			return fmt.Errorf("failed to link genre %d to film %d: %w", g.ID, m.FilmID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("film %d: %w", m.FilmID, models.ErrDuplicateFilm)
		}
		return fmt.Errorf("failed to commit film %d: %w", m.FilmID, err)
	}
	m.ID = id
	return nil
}

// FindByID loads a movie by its store id.
func (s *MovieStore) FindByID(ctx context.Context, id int64) (*models.MovieRecord, error) {
	return s.findOne(ctx, "id", id)
}

// FindByFilmID loads a movie by its catalog film id.
func (s *MovieStore) FindByFilmID(ctx context.Context, filmID int64) (*models.MovieRecord, error) {
	return s.findOne(ctx, "film_id", filmID)
}

func (s *MovieStore) findOne(ctx context.Context, column string, value int64) (*models.MovieRecord, error) {
	start := time.Now()
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE `+column+` = ?`, value)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("find", "movies", time.Since(start), nil)
		return nil, models.ErrNotFound
	}
	metrics.RecordDBQuery("find", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}
	if err := s.attachGenres(ctx, []*models.MovieRecord{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns one page of stored movies matching filters.
func (s *MovieStore) List(ctx context.Context, filters models.SearchFilters, opts models.ListOptions) (*models.Page[models.MovieRecord], error) {
	if opts.Size <= 0 {
		opts.Size = models.DefaultListOptions().Size
	}
	if opts.Page < 0 {
		opts.Page = 0
	}
	where, args := buildMovieFilter(filters)

	start := time.Now()
	var total int64
	err := s.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies m`+where, args...).Scan(&total)
	metrics.RecordDBQuery("count", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	query := `SELECT ` + prefixed(movieColumns, "m") + ` FROM movies m` + where +
		orderClause(opts) + ` LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), opts.Size, opts.Page*opts.Size)
	movies, err := s.query(ctx, "list", query, pageArgs...)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(opts.Size) - 1) / int64(opts.Size))
	content := make([]models.MovieRecord, 0, len(movies))
	for _, m := range movies {
		content = append(content, *m)
	}
	return &models.Page[models.MovieRecord]{
		Content:       content,
		Page:          opts.Page,
		Size:          opts.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// Find returns every stored movie matching filters, ordered by film id.
func (s *MovieStore) Find(ctx context.Context, filters models.SearchFilters) ([]*models.MovieRecord, error) {
	where, args := buildMovieFilter(filters)
	query := `SELECT ` + prefixed(movieColumns, "m") + ` FROM movies m` + where + ` ORDER BY m.film_id ASC`
	return s.query(ctx, "find_all", query, args...)
}

// SearchByName matches titles case-insensitively where the title, or any
// word in it, starts with query. Results are ordered by title.
func (s *MovieStore) SearchByName(ctx context.Context, query string, limit int) ([]*models.MovieRecord, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []*models.MovieRecord{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	pattern := escapeLike(q)
	return s.query(ctx, "search", `SELECT `+prefixed(movieColumns, "m")+` FROM movies m
		WHERE lower(m.name) LIKE ? ESCAPE '\' OR lower(m.name) LIKE ? ESCAPE '\'
		ORDER BY m.name ASC LIMIT ?`,
		pattern+"%", "% "+pattern+"%", limit)
}

// Count returns the number of stored movies.
func (s *MovieStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func (s *MovieStore) query(ctx context.Context, op, query string, args ...any) ([]*models.MovieRecord, error) {
	start := time.Now()
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordDBQuery(op, "movies", time.Since(start), err)
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	movies := make([]*models.MovieRecord, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			metrics.RecordDBQuery(op, "movies", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	err = rows.Err()
	metrics.RecordDBQuery(op, "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}

	if err := s.attachGenres(ctx, movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// attachGenres loads genre links for movies in a single query.
func (s *MovieStore) attachGenres(ctx context.Context, movies []*models.MovieRecord) error {
	if len(movies) == 0 {
		return nil
	}
	byID := make(map[int64]*models.MovieRecord, len(movies))
	placeholders := make([]string, 0, len(movies))
	args := make([]any, 0, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
		m.Genres = []models.GenreRecord{}
		placeholders = append(placeholders, "?")
		args = append(args, m.ID)
	}

	start := time.Now()
	rows, err := s.db.conn.QueryContext(ctx, `SELECT mg.movie_id, g.id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY mg.movie_id, g.id`, args...)
	if err != nil {
		metrics.RecordDBQuery("genres", "movie_genres", time.Since(start), err)
		return fmt.Errorf("failed to load movie genres: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var movieID int64
		var g models.GenreRecord
		if err := rows.Scan(&movieID, &g.ID, &g.Name); err != nil {
			return fmt.Errorf("failed to scan movie genre: %w", err)
		}
		if m, ok := byID[movieID]; ok {
			m.Genres = append(m.Genres, g)
		}
	}
	err = rows.Err()
	metrics.RecordDBQuery("genres", "movie_genres", time.Since(start), err)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*models.MovieRecord, error) {
	var (
		m           models.MovieRecord
		year        sql.NullInt64
		rating      sql.NullFloat64
		description sql.NullString
	)
	if err := row.Scan(&m.ID, &m.FilmID, &m.Title, &year, &rating, &description); err != nil {
		return nil, err
	}
	m.Year = int(year.Int64)
	m.Rating = rating.Float64
	m.Description = description.String
	return &m, nil
}

// buildMovieFilter renders filters as a WHERE clause over alias m.
func buildMovieFilter(f models.SearchFilters) (string, []any) {
	var conds []string
	var args []any

	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
		conds = append(conds, `lower(m.name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(kw)+"%")
	}
	if genre := strings.TrimSpace(f.Genre); genre != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
			WHERE mg.movie_id = m.id AND lower(g.name) = lower(?))`)
		args = append(args, genre)
	}
	if f.YearFrom != nil {
		conds = append(conds, `m.year >= ?`)
		args = append(args, *f.YearFrom)
	}
	if f.YearTo != nil {
		conds = append(conds, `m.year <= ?`)
		args = append(args, *f.YearTo)
	}
	if f.RatingFrom != nil {
		conds = append(conds, `m.rating >= ?`)
		args = append(args, *f.RatingFrom)
	}
	if f.RatingTo != nil {
		conds = append(conds, `m.rating <= ?`)
		args = append(args, *f.RatingTo)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(opts models.ListOptions) string {
	col, ok := sortColumns[opts.SortBy]
	if !ok {
		col = "film_id"
	}
	dir := "ASC"
	if strings.EqualFold(opts.Direction, "desc") {
		dir = "DESC"
	}
	return " ORDER BY m." + col + " " + dir + " NULLS LAST, m.id ASC"
}

func prefixed(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
