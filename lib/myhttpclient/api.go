package myhttpclient

import (
	"context"
	"net/http"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
)

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func (r Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPSender performs one outbound call. A returned error always means the exchange itself
// failed (dns, connect, timeout, reading the body); any HTTP status is reported in Response.
type HTTPSender interface {
	Send(c context.Context, req Request) (Response, error)
}

func New(timeout time.Duration) HTTPSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return newRealClient(&http.Client{Timeout: timeout})
}

// NewWithClient uses the given client as is, e.g. one built by httptest.
func NewWithClient(client *http.Client) HTTPSender {
	return newRealClient(client)
}
