// Package security blocks obvious scanner traffic before it reaches the API.
package security

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// probePrefixes are paths only vulnerability scanners ask for.
var probePrefixes = []string{
	"/.env",
	"/.git/",
	"/.htaccess",
	"/.php",
	"/admin/",
	"/cgi-bin/",
	"/phpmyadmin",
	"/server-status",
	"/wp-",
	"/xmlrpc.php",
}

// traversalPatterns are checked against both the raw and the decoded path.
var traversalPatterns = []string{
	"../",
	"..%2f",
	"..%5c",
	"%2e%2e/",
	"%00",
	"\x00",
}

// Filter rejects scanner probes and path traversal attempts with a 400.
// Health and metrics endpoints are never filtered.
func Filter(enabled bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/health", "/healthz", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}

			if reason := suspicious(r.URL); reason != "" {
				logger.Debug("blocked request",
					"path", r.URL.Path,
					"reason", reason,
				)
				writeBlocked(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func suspicious(u *url.URL) string {
	path := strings.ToLower(u.Path)
	for _, prefix := range probePrefixes {
		if strings.HasPrefix(path, prefix) {
			return "probe"
		}
	}

	candidates := []string{path, strings.ToLower(u.EscapedPath())}
	if decoded, err := url.PathUnescape(u.EscapedPath()); err == nil {
		candidates = append(candidates, strings.ToLower(decoded))
	}
	for _, c := range candidates {
		for _, pattern := range traversalPatterns {
			if strings.Contains(c, pattern) {
				return "traversal"
			}
		}
	}
	return ""
}

// writeBlocked does not say what triggered the block.
func writeBlocked(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    "BAD_REQUEST",
			"message": "Invalid request",
		},
	})
}
