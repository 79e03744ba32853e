package web

// Shared request parsing helpers used across handlers.

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvinsight/internal/core"
)

// maxJSONBody caps JSON request bodies (filters, rename, mkdir).
const maxJSONBody = 1 << 20

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseSort reads the sort and dir query parameters.
func parseSort(r *http.Request) core.SortSpec {
	return core.SortSpec{
		Column: strings.TrimSpace(r.URL.Query().Get("sort")),
		Dir:    r.URL.Query().Get("dir"),
	}.Normalize()
}

// readBody reads a capped request body.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if len(body) > maxJSONBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", errBadBody, maxJSONBody)
	}
	return body, nil
}

// decodeJSON reads a capped JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// requireParam returns a trimmed, non-empty value or ErrMissingParameter.
func requireParam(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s", core.ErrMissingParameter, name)
	}
	return value, nil
}
