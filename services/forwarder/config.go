package forwarder

import (
	"net/http"
	"strings"

	"github.com/MarcGrol/ergsync/lib/myconfig"
)

// Config parameterizes the proxy and token forwarders.
type Config struct {
	CredentialHeader    string
	AllowedPathPrefix   string
	UpstreamBaseURL     string
	TokenURL            string
	ClientID            string
	ClientSecret        string
	RedirectURI         string
	AllowedOrigin       string
	ForwardCacheHeaders bool
}

func ConfigFromServer(cfg myconfig.Server) Config {
	return Config{
		CredentialHeader:    cfg.CredentialHeader,
		AllowedPathPrefix:   cfg.AllowedPathPrefix,
		UpstreamBaseURL:     cfg.APIBaseURL(),
		TokenURL:            cfg.TokenURL(),
		ClientID:            cfg.ClientID,
		ClientSecret:        cfg.ClientSecret,
		RedirectURI:         cfg.RedirectURI,
		AllowedOrigin:       cfg.AllowedOrigin,
		ForwardCacheHeaders: cfg.ForwardCacheHeaders,
	}
}

func (c Config) withDefaults() Config {
	if c.CredentialHeader == "" {
		c.CredentialHeader = "Authorization"
	}
	if c.AllowedPathPrefix == "" {
		c.AllowedPathPrefix = "/users/me"
	}
	c.UpstreamBaseURL = strings.TrimSuffix(c.UpstreamBaseURL, "/")
	c.CredentialHeader = http.CanonicalHeaderKey(c.CredentialHeader)
	return c
}

func (c Config) usesAuthorizationHeader() bool {
	return c.CredentialHeader == "Authorization"
}

func (c Config) allowedHeaders() []string {
	headers := []string{"Content-Type", "Authorization"}
	if !c.usesAuthorizationHeader() {
		headers = append(headers, c.CredentialHeader)
	}
	return headers
}
