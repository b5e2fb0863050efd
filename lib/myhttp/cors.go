package myhttp

import (
	"net/http"
	"strings"
)

// CORS holds the headers every forwarder response carries, preflight or not.
type CORS struct {
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
}

func (c CORS) Apply(w http.ResponseWriter) {
	origin := c.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	if origin != "*" {
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(c.AllowedMethods, ", "))
	w.Header().Set("Access-Control-Allow-Headers", strings.Join(c.AllowedHeaders, ", "))
}
