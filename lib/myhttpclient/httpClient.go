package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/MarcGrol/ergsync/lib/mylog"
)

const (
	debug = false
)

type realClient struct {
	client *http.Client
	logger mylog.Logger
}

func newRealClient(client *http.Client) *realClient {
	return &realClient{
		client: client,
		logger: mylog.New("httpclient"),
	}
}

func (rc realClient) Send(c context.Context, req Request) (Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(c, req.Method, req.URL, body)
	if err != nil {
		return Response{}, fmt.Errorf("error creating http request for %s %s: %w", req.Method, req.URL, err)
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	if debug {
		reqDump, err := httputil.DumpRequestOut(httpReq, true)
		if err == nil {
			fmt.Printf("HTTP-req:\n%s", string(reqDump))
		}
	}

	httpResp, err := rc.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("error sending %s %s: %w", req.Method, req.URL, err)
	}
	defer httpResp.Body.Close()

	if debug {
		respDump, err := httputil.DumpResponse(httpResp, true)
		if err == nil {
			fmt.Printf("HTTP-resp:\n%s", string(respDump))
		}
	}

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("error reading response %s %s: %w", req.Method, req.URL, err)
	}

	rc.logger.Log(c, "", mylog.SeverityDebug, "HTTP call: %s %s -> %d", req.Method, req.URL, httpResp.StatusCode)

	return Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respPayload,
	}, nil
}
