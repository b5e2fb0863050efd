package mycontext

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedUUIDer string

func (u fixedUUIDer) Create() string {
	return string(u)
}

func TestContextFromHTTPRequest(t *testing.T) {
	t.Run("Generated id", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/api/proxy", nil)
		c := ContextFromHTTPRequest(r, fixedUUIDer("abc"))
		assert.Equal(t, "abc", TraceFrom(c))
	})

	t.Run("Incoming request id", func(t *testing.T) {
		r, _ := http.NewRequest(http.MethodGet, "/api/proxy", nil)
		r.Header.Set("X-Request-Id", "edge-42")
		c := ContextFromHTTPRequest(r, fixedUUIDer("abc"))
		assert.Equal(t, "edge-42", TraceFrom(c))
	})

	t.Run("Cloud trace", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "ergsync")
		r, _ := http.NewRequest(http.MethodGet, "/api/proxy", nil)
		r.Header.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b12000100000/1;o=1")
		c := ContextFromHTTPRequest(r, fixedUUIDer("abc"))
		assert.Equal(t, "projects/ergsync/traces/105445aa7843bc8bf206b12000100000", TraceFrom(c))
	})

	t.Run("No trace", func(t *testing.T) {
		assert.Equal(t, "", TraceFrom(context.TODO()))
	})
}
