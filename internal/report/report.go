// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package report

import (
	"strconv"
	"strings"

	"github.com/tomtom215/cinefeed/internal/models"
)

const (
	storedCSVHeader = "filmId,filmName,year,rating,description\n"
	batchCSVHeader  = "filmId,filmName,year,rating,description,genres\n"
	xmlProlog       = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

// Render renders stored movies in the given format.
func Render(t Type, movies []*models.MovieRecord) string {
	if t == TypeXML {
		return XML(movies)
	}
	return CSV(movies)
}

// CSV renders stored movies without a genres column.
func CSV(movies []*models.MovieRecord) string {
	var b strings.Builder
	b.WriteString(storedCSVHeader)
	for _, m := range movies {
		b.WriteString(strconv.FormatInt(m.FilmID, 10))
		b.WriteString(`,"`)
		b.WriteString(EscapeCSV(m.Title))
		b.WriteString(`",`)
		b.WriteString(strconv.Itoa(m.Year))
		b.WriteByte(',')
		b.WriteString(FormatRating(m.Rating))
		b.WriteString(`,"`)
		b.WriteString(EscapeCSV(m.Description))
		b.WriteString("\"\n")
	}
	return b.String()
}

// BatchCSV renders buffered bus messages, one row per message in order.
// Duplicate messages yield duplicate rows.
func BatchCSV(messages []models.MovieMessage) string {
	var b strings.Builder
	b.WriteString(batchCSVHeader)
	for i := range messages {
		m := &messages[i]
		b.WriteString(m.FilmIDString())
		b.WriteString(`,"`)
		b.WriteString(EscapeCSV(m.FilmName))
		b.WriteString(`",`)
		b.WriteString(m.YearString())
		b.WriteByte(',')
		writeRatingField(&b, m.Rating)
		b.WriteString(`,"`)
		b.WriteString(EscapeCSV(m.Description))
		b.WriteString(`","`)
		b.WriteString(EscapeCSV(strings.Join(m.Genres, ", ")))
		b.WriteString("\"\n")
	}
	return b.String()
}

// writeRatingField writes a message rating bare, quoting it only when the
// free-form suffix would otherwise break the row.
func writeRatingField(b *strings.Builder, rating string) {
	if strings.ContainsAny(rating, ",\"\r\n") {
		b.WriteByte('"')
		b.WriteString(EscapeCSV(rating))
		b.WriteByte('"')
		return
	}
	b.WriteString(rating)
}

// XML renders stored movies as a <movies> document.
func XML(movies []*models.MovieRecord) string {
	var b strings.Builder
	b.WriteString(xmlProlog)
	b.WriteString("<movies>\n")
	for _, m := range movies {
		b.WriteString("  <movie>\n")
		writeElement(&b, "filmId", strconv.FormatInt(m.FilmID, 10))
		writeElement(&b, "filmName", EscapeXML(m.Title))
		writeElement(&b, "year", strconv.Itoa(m.Year))
		writeElement(&b, "rating", FormatRating(m.Rating))
		writeElement(&b, "description", EscapeXML(m.Description))
		b.WriteString("  </movie>\n")
	}
	b.WriteString("</movies>")
	return b.String()
}

func writeElement(b *strings.Builder, name, escaped string) {
	b.WriteString("    <")
	b.WriteString(name)
	b.WriteByte('>')
	b.WriteString(escaped)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">\n")
}
