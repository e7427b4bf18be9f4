// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package report renders movie lists as CSV or XML attachments.

Two CSV shapes exist. Stored-movie reports (CSV) have the header
filmId,filmName,year,rating,description and format ratings to one decimal.
Batch reports (BatchCSV) add a genres column and carry each bus message's
rating text verbatim. Text columns are always quoted with embedded quotes
doubled, so a report round-trips through any RFC 4180 reader.

XML reports wrap <movie> elements in a <movies> root and escape the five
predefined entities.
*/
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is a report format.
type Type string

// Supported report types.
const (
	TypeCSV Type = "csv"
	TypeXML Type = "xml"
)

// ParseType accepts "csv" or "xml" in any case.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeCSV:
		return TypeCSV, nil
	case TypeXML:
		return TypeXML, nil
	default:
		return "", fmt.Errorf("unsupported report type %q", s)
	}
}

// MIMEType returns the attachment content type.
func (t Type) MIMEType() string {
	if t == TypeCSV {
		return "text/csv"
	}
	return "application/xml"
}

// FileName returns the attachment file name.
func (t Type) FileName() string {
	return "movies_report." + string(t)
}

// FormatRating renders a rating with one decimal, rounding half up.
// 9.75 -> "9.8", 9.99 -> "10.0", 7 -> "7.0".
func FormatRating(rating float64) string {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return "0.0"
	}
	// The epsilon absorbs binary representation error such as 8.45 -> 8.4499...
	rounded := math.Floor(rating*10+0.5+1e-9) / 10
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}

var (
	xmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	xmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")
)

// EscapeCSV doubles embedded quote characters.
func EscapeCSV(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// UnescapeCSV reverses EscapeCSV.
func UnescapeCSV(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// EscapeXML replaces & < > " ' with their predefined entities.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// UnescapeXML reverses EscapeXML.
func UnescapeXML(s string) string {
	return xmlUnescaper.Replace(s)
}
