package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
)

// slugRegex matches the URL-safe slugs used for monsters, works, battles,
// collections, and posts.
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug checks that a path parameter looks like a slug before it
// reaches the database.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > 128 {
		return fmt.Errorf("slug too long")
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("invalid slug: %s", slug)
	}
	return nil
}

// ParsePagination reads limit/offset query parameters, applying the default
// and maximum page size.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int, err error) {
	limit = defaultLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
		if limit > maxLimit {
			return 0, 0, fmt.Errorf("limit must be at most %d", maxLimit)
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer")
		}
	}

	return limit, offset, nil
}

// ParseYear reads an optional year query parameter. Zero means unset.
func ParseYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1800 || year > 3000 {
		return 0, fmt.Errorf("invalid year: %s", raw)
	}
	return year, nil
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
