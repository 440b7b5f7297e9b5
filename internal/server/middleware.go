// Package server holds HTTP middleware shared by the journal API: CORS
// handling and security response headers.
package server

import (
	"net/http"
	"slices"
	"strings"
)

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowedOrigins []string // empty allows any origin ("*")
}

// CORS adds CORS headers. With an allow-list, requests from unlisted
// origins get no CORS headers (the browser blocks them) and their
// preflights are refused.
func CORS(cfg CORSConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := "*"
		if len(cfg.AllowedOrigins) > 0 {
			if !slices.Contains(cfg.AllowedOrigins, origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			allowed = origin
			w.Header().Add("Vary", "Origin")
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, If-None-Match, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "ETag, X-Request-ID, X-RateLimit-Remaining")
		if allowed != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSPConfig holds Content-Security-Policy directives.
type CSPConfig struct {
	DefaultSrc     []string
	ConnectSrc     []string
	FrameAncestors []string
	BaseURI        []string
	FormAction     []string
}

// APICSPConfig is the policy for JSON endpoints, which never load
// resources.
func APICSPConfig() CSPConfig {
	return CSPConfig{
		DefaultSrc:     []string{"'none'"},
		FrameAncestors: []string{"'none'"},
		BaseURI:        []string{"'none'"},
		FormAction:     []string{"'none'"},
	}
}

// Header renders the policy as a header value.
func (cfg CSPConfig) Header() string {
	var directives []string
	for _, d := range []struct {
		name    string
		sources []string
	}{
		{"default-src", cfg.DefaultSrc},
		{"connect-src", cfg.ConnectSrc},
		{"frame-ancestors", cfg.FrameAncestors},
		{"base-uri", cfg.BaseURI},
		{"form-action", cfg.FormAction},
	} {
		if len(d.sources) > 0 {
			directives = append(directives, d.name+" "+strings.Join(d.sources, " "))
		}
	}
	return strings.Join(directives, "; ")
}

// SecurityHeaders sets the standard hardening headers plus the given CSP.
func SecurityHeaders(cfg CSPConfig, next http.Handler) http.Handler {
	csp := cfg.Header()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		if csp != "" {
			h.Set("Content-Security-Policy", csp)
		}
		next.ServeHTTP(w, r)
	})
}
