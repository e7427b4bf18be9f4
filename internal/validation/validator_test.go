// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/cinefeed/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_SearchFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   models.SearchFilters
		wantErr string
	}{
		{name: "empty filters", input: models.SearchFilters{}},
		{
			name:  "full valid range",
			input: models.SearchFilters{Keyword: "драма", YearFrom: intPtr(1990), YearTo: intPtr(2000), RatingFrom: floatPtr(7), RatingTo: floatPtr(9.5)},
		},
		{
			name:    "inverted years",
			input:   models.SearchFilters{YearFrom: intPtr(2001), YearTo: intPtr(2000)},
			wantErr: "YearTo must be greater than or equal to YearFrom",
		},
		{
			name:    "inverted ratings",
			input:   models.SearchFilters{RatingFrom: floatPtr(8), RatingTo: floatPtr(7)},
			wantErr: "RatingTo must be greater than or equal to RatingFrom",
		},
		{
			name:    "rating out of range",
			input:   models.SearchFilters{RatingFrom: floatPtr(11)},
			wantErr: "RatingFrom must be less than or equal to 10",
		},
		{
			name:    "year too early",
			input:   models.SearchFilters{YearFrom: intPtr(1700)},
			wantErr: "YearFrom must be greater than or equal to 1888",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct() = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateStruct() = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
			var ve *Errors
			if !errors.As(err, &ve) || len(ve.Fields) == 0 {
				t.Errorf("error should be *Errors with fields, got %T", err)
			}
		})
	}
}

func TestValidateStruct_ListOptions(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(models.DefaultListOptions()); err != nil {
		t.Errorf("default options invalid: %v", err)
	}

	bad := models.ListOptions{Page: -1, Size: 500, SortBy: "budget", Direction: "up"}
	err := ValidateStruct(bad)
	var ve *Errors
	if !errors.As(err, &ve) {
		t.Fatalf("ValidateStruct() = %v, want *Errors", err)
	}
	if len(ve.Fields) != 4 {
		t.Errorf("got %d field errors, want 4: %v", len(ve.Fields), err)
	}
}
