package mycontext

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// CtxTraceContext is a context key for the trace context this (used by mylog)
type CtxTraceContext struct{}

type UUIDer interface {
	Create() string
}

// ContextFromHTTPRequest derives a trace label for the request: the Cloud trace when running on
// Google Cloud, an incoming X-Request-Id, or a fresh id.
func ContextFromHTTPRequest(r *http.Request, uuider UUIDer) context.Context {
	var trace string

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	traceContext := r.Header.Get("X-Cloud-Trace-Context")
	traceParts := strings.Split(traceContext, "/")

	switch {
	case projectID != "" && len(traceParts) > 0 && len(traceParts[0]) > 0:
		trace = fmt.Sprintf("projects/%s/traces/%s", projectID, traceParts[0])
	case r.Header.Get("X-Request-Id") != "":
		trace = r.Header.Get("X-Request-Id")
	default:
		trace = uuider.Create()
	}

	return WithTrace(r.Context(), trace)
}

func WithTrace(c context.Context, trace string) context.Context {
	return context.WithValue(c, CtxTraceContext{}, trace)
}

func TraceFrom(c context.Context) string {
	if c == nil {
		return ""
	}
	trace, _ := c.Value(CtxTraceContext{}).(string)
	return trace
}
