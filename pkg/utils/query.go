package utils

import (
	"net/http"
	"strconv"
)

// QueryInt parses an integer query parameter with a default and an upper
// bound. Unparseable or out-of-range values fall back to the default, so a
// malformed ?limit= never turns into a 400 on a read endpoint.
func QueryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > max {
		return def
	}
	return v
}
