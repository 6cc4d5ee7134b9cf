package request

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RaulAJaimes/eccomerce/internal/domain"
)

const maxRequestBodySize = 1 << 20 // 1MB

// DecodeJSON decodes JSON request body into the provided struct with size limit
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	// Limit request body size to prevent DoS attacks
	limitedReader := io.LimitReader(r.Body, maxRequestBodySize)

	if err := json.NewDecoder(limitedReader).Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// GetStringParam extracts a non-empty string parameter from the URL
func GetStringParam(r *http.Request, key string) (string, error) {
	param := strings.TrimSpace(chi.URLParam(r, key))
	if param == "" {
		return "", fmt.Errorf("missing parameter: %s", key)
	}
	return param, nil
}

// GetIntQuery extracts an integer query parameter with a default value
func GetIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// GetFloatQuery extracts a float query parameter, nil when absent or malformed
func GetFloatQuery(r *http.Request, key string) *float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	return &floatValue
}

// GetBoolQuery extracts a boolean query parameter, nil when absent or malformed
func GetBoolQuery(r *http.Request, key string) *bool {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}

	return &boolValue
}

// GetFilterOptions assembles listing filters from query parameters. Malformed
// values fall back to "no constraint" rather than erroring; the repository
// layer clamps page and limit.
func GetFilterOptions(r *http.Request) domain.FilterOptions {
	query := r.URL.Query()

	return domain.FilterOptions{
		Page:      GetIntQuery(r, "page", domain.DefaultPage),
		Limit:     GetIntQuery(r, "limit", domain.DefaultLimit),
		Category:  strings.TrimSpace(query.Get("category")),
		MinPrice:  GetFloatQuery(r, "min_price"),
		MaxPrice:  GetFloatQuery(r, "max_price"),
		Active:    GetBoolQuery(r, "active"),
		InStock:   GetBoolQuery(r, "in_stock"),
		Search:    strings.TrimSpace(query.Get("search")),
		SortBy:    strings.TrimSpace(query.Get("sort_by")),
		SortOrder: domain.SortOrder(strings.ToLower(query.Get("sort_order"))),
	}
}
