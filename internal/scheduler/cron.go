// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package scheduler

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// maxCronSearch bounds NextRun's minute-by-minute scan.
const maxCronSearch = 4 * 366 * 24 * 60

// CronExpression is a parsed five-field cron expression:
// minute hour day-of-month month day-of-week (0 or 7 = Sunday).
type CronExpression struct {
	Minutes     []int
	Hours       []int
	DaysOfMonth []int
	Months      []int
	DaysOfWeek  []int

	anyDayOfMonth bool
	anyDayOfWeek  bool
}

type cronField struct {
	name     string
	min, max int
}

var cronFields = [5]cronField{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 7},
}

// ParseCron parses expr. Each field accepts *, n, n-m, lists of those, and
// a /step suffix on * or a range or a start value.
func ParseCron(expr string) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != len(cronFields) {
		return nil, fmt.Errorf("cron expression must have %d fields, got %d", len(cronFields), len(fields))
	}

	var parsed [5][]int
	for i, f := range cronFields {
		values, err := parseCronField(fields[i], f.min, f.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", f.name, err)
		}
		parsed[i] = values
	}

	dow := make([]int, 0, len(parsed[4]))
	for _, d := range parsed[4] {
		dow = append(dow, d%7)
	}

	return &CronExpression{
		Minutes:       parsed[0],
		Hours:         parsed[1],
		DaysOfMonth:   parsed[2],
		Months:        parsed[3],
		DaysOfWeek:    sortedUnique(dow),
		anyDayOfMonth: fields[2] == "*",
		anyDayOfWeek:  fields[4] == "*",
	}, nil
}

// NextRun returns the first matching minute strictly after after, in loc
// (UTC when nil). It returns the zero time if nothing matches within four years.
func (c *CronExpression) NextRun(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	for i := 0; i < maxCronSearch; i++ {
		if c.matches(t) {
			return t
		}
		t = t.Add(time.Minute)
	}
	return time.Time{}
}

func (c *CronExpression) matches(t time.Time) bool {
	if !slices.Contains(c.Minutes, t.Minute()) ||
		!slices.Contains(c.Hours, t.Hour()) ||
		!slices.Contains(c.Months, int(t.Month())) {
		return false
	}

	dom := slices.Contains(c.DaysOfMonth, t.Day())
	dow := slices.Contains(c.DaysOfWeek, int(t.Weekday()))
	switch {
	case c.anyDayOfMonth && c.anyDayOfWeek:
		return true
	case c.anyDayOfMonth:
		return dow
	case c.anyDayOfWeek:
		return dom
	default:
		// Both restricted: classic cron matches either.
		return dom || dow
	}
}

func parseCronField(field string, minVal, maxVal int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(field, ",") {
		values, err := parseCronPart(part, minVal, maxVal)
		if err != nil {
			return nil, err
		}
		out = append(out, values...)
	}
	return sortedUnique(out), nil
}

func parseCronPart(part string, minVal, maxVal int) ([]int, error) {
	step := 1
	base := part
	if i := strings.IndexByte(part, '/'); i >= 0 {
		s, err := strconv.Atoi(part[i+1:])
		if err != nil || s <= 0 {
			return nil, fmt.Errorf("invalid step value: %s", part[i+1:])
		}
		step = s
		base = part[:i]
	}

	start, end := minVal, maxVal
	switch {
	case base == "*":
	case strings.Contains(base, "-"):
		lo, hi, _ := strings.Cut(base, "-")
		var err error
		if start, err = strconv.Atoi(lo); err != nil {
			return nil, fmt.Errorf("invalid range start: %s", lo)
		}
		if end, err = strconv.Atoi(hi); err != nil {
			return nil, fmt.Errorf("invalid range end: %s", hi)
		}
	default:
		v, err := strconv.Atoi(base)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", base)
		}
		start = v
		if step == 1 {
			end = v
		}
	}

	if start < minVal || end > maxVal || start > end {
		return nil, fmt.Errorf("value out of range: %s (allowed %d-%d)", part, minVal, maxVal)
	}

	values := make([]int, 0, (end-start)/step+1)
	for v := start; v <= end; v += step {
		values = append(values, v)
	}
	return values, nil
}

func sortedUnique(values []int) []int {
	sort.Ints(values)
	return slices.Compact(values)
}
