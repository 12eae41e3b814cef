package validation

import (
	"net/http/httptest"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	valid := []string{"godzilla", "king-ghidorah", "gojira-1954"}
	for _, s := range valid {
		if err := ValidateSlug(s); err != nil {
			t.Errorf("ValidateSlug(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "Godzilla", "king ghidorah", "-leading", "trailing-", "a--b", "sla/sh"}
	for _, s := range invalid {
		if err := ValidateSlug(s); err == nil {
			t.Errorf("ValidateSlug(%q) = nil, want error", s)
		}
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/monsters?limit=10&offset=20", nil)
	limit, offset, err := ParsePagination(r, 24, 100)
	if err != nil {
		t.Fatalf("ParsePagination: %v", err)
	}
	if limit != 10 || offset != 20 {
		t.Errorf("limit=%d offset=%d, want 10/20", limit, offset)
	}

	r = httptest.NewRequest("GET", "/api/monsters", nil)
	limit, offset, err = ParsePagination(r, 24, 100)
	if err != nil || limit != 24 || offset != 0 {
		t.Errorf("defaults: limit=%d offset=%d err=%v", limit, offset, err)
	}

	for _, q := range []string{"limit=0", "limit=-5", "limit=101", "limit=x", "offset=-1"} {
		r = httptest.NewRequest("GET", "/api/monsters?"+q, nil)
		if _, _, err := ParsePagination(r, 24, 100); err == nil {
			t.Errorf("ParsePagination(%s) = nil, want error", q)
		}
	}
}

func TestParseYear(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/works?year=1954", nil)
	year, err := ParseYear(r)
	if err != nil || year != 1954 {
		t.Errorf("year=%d err=%v, want 1954", year, err)
	}

	r = httptest.NewRequest("GET", "/api/works", nil)
	if year, err := ParseYear(r); err != nil || year != 0 {
		t.Errorf("unset year=%d err=%v, want 0", year, err)
	}

	r = httptest.NewRequest("GET", "/api/works?year=54", nil)
	if _, err := ParseYear(r); err == nil {
		t.Error("expected error for out-of-range year")
	}
}
