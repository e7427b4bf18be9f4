// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package eventprocessor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinefeed/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// MarshalMovieMessage encodes a movie message for the bus.
func MarshalMovieMessage(m *models.MovieMessage) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal movie message: %w", err)
	}
	return data, nil
}

// wireMovieMessage accepts the loosely typed fields producers have sent
// over time. Unknown fields are ignored.
type wireMovieMessage struct {
	ID          json.RawMessage `json:"id"`
	FilmID      json.RawMessage `json:"filmId"`
	FilmName    *string         `json:"filmName"`
	Year        json.RawMessage `json:"year"`
	Rating      json.RawMessage `json:"rating"`
	Description *string         `json:"description"`
	Genres      json.RawMessage `json:"genres"`
}

// ParseMovieMessage decodes a bus payload, applying defaults:
//   - a leading UTF-8 BOM and surrounding whitespace are stripped
//   - blank filmName becomes "Unknown"; description defaults to ""
//   - rating may be a number or a string; blank or non-numeric becomes "N/A",
//     a "/10" style suffix is tolerated and the trimmed text is kept
//   - genres may be a list or a comma separated string; blanks are dropped
//   - id, filmId and year may be numbers, numeric strings, or absent
//
// Payloads that are not a JSON object, or whose typed fields cannot be
// read, yield an error wrapping ErrMalformedMessage.
func ParseMovieMessage(data []byte) (*models.MovieMessage, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedMessage)
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedMessage)
	}

	var wire wireMovieMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	id, err := optionalInt(wire.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrMalformedMessage, err)
	}
	filmID, err := optionalInt(wire.FilmID)
	if err != nil {
		return nil, fmt.Errorf("%w: filmId: %v", ErrMalformedMessage, err)
	}
	year, err := optionalInt(wire.Year)
	if err != nil {
		return nil, fmt.Errorf("%w: year: %v", ErrMalformedMessage, err)
	}

	msg := &models.MovieMessage{
		ID:       id,
		FilmID:   filmID,
		FilmName: models.UnknownFilmName,
		Rating:   parseRating(wire.Rating),
		Genres:   parseGenres(wire.Genres),
	}
	if year != nil {
		y := int(*year)
		msg.Year = &y
	}
	if wire.FilmName != nil {
		if name := strings.TrimSpace(*wire.FilmName); name != "" {
			msg.FilmName = name
		}
	}
	if wire.Description != nil {
		msg.Description = strings.TrimSpace(*wire.Description)
	}
	return msg, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func optionalInt(raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}
	text := strings.TrimSpace(string(raw))
	if text[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return nil, nil
		}
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %s", text)
	}
	return &v, nil
}

func parseRating(raw json.RawMessage) string {
	if isNull(raw) {
		return models.RatingUnavailable
	}
	text := strings.TrimSpace(string(raw))
	switch text[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.RatingUnavailable
		}
		return NormalizeRating(s)
	case '{', '[', 't', 'f':
		return models.RatingUnavailable
	default:
		return NormalizeRating(text)
	}
}

// NormalizeRating trims a rating and checks that its numeric part, the text
// before any "/", parses as a number. It returns the trimmed text or "N/A".
func NormalizeRating(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.RatingUnavailable
	}
	numeric := s
	if i := strings.IndexByte(s, '/'); i >= 0 {
		numeric = strings.TrimSpace(s[:i])
	}
	if _, err := strconv.ParseFloat(numeric, 64); err != nil {
		return models.RatingUnavailable
	}
	return s
}

func parseGenres(raw json.RawMessage) []string {
	genres := []string{}
	if isNull(raw) {
		return genres
	}

	var list []interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			var name string
			switch v := item.(type) {
			case nil:
				continue
			case string:
				name = v
			default:
				name = fmt.Sprint(v)
			}
			if name = strings.TrimSpace(name); name != "" {
				genres = append(genres, name)
			}
		}
		return genres
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		for _, part := range strings.Split(joined, ",") {
			if name := strings.TrimSpace(part); name != "" {
				genres = append(genres, name)
			}
		}
	}
	return genres
}
