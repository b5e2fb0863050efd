package logbook

import (
	"net/url"
	"strings"

	"github.com/MarcGrol/ergsync/lib/myhttpclient"
)

// Target turns an endpoint path plus access token into an outbound request.
type Target interface {
	Build(endpointPath string, accessToken string) myhttpclient.Request
}

type directTarget struct {
	apiBaseURL string
}

// DirectTarget calls the provider API itself with a bearer token.
func DirectTarget(apiBaseURL string) Target {
	return &directTarget{apiBaseURL: strings.TrimSuffix(apiBaseURL, "/")}
}

func (t *directTarget) Build(endpointPath string, accessToken string) myhttpclient.Request {
	return myhttpclient.Request{
		Method: "GET",
		URL:    t.apiBaseURL + endpointPath,
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
			"Accept":        "application/json",
		},
	}
}

type proxyTarget struct {
	proxyURL         string
	credentialHeader string
}

// ProxyTarget calls a forwarder that expects the endpoint path in the "path" query parameter
// and the access token in credentialHeader.
func ProxyTarget(proxyURL string, credentialHeader string) Target {
	return &proxyTarget{
		proxyURL:         proxyURL,
		credentialHeader: credentialHeader,
	}
}

func (t *proxyTarget) Build(endpointPath string, accessToken string) myhttpclient.Request {
	credential := accessToken
	if strings.EqualFold(t.credentialHeader, "Authorization") {
		credential = "Bearer " + accessToken
	}

	separator := "?"
	if strings.Contains(t.proxyURL, "?") {
		separator = "&"
	}

	return myhttpclient.Request{
		Method: "GET",
		URL:    t.proxyURL + separator + url.Values{"path": {endpointPath}}.Encode(),
		Headers: map[string]string{
			t.credentialHeader: credential,
			"Accept":           "application/json",
		},
	}
}
