package myconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const prefix = "ergsync"

// Provider holds the settings shared by the server and the client. Every key is read as
// ERGSYNC_<KEY> first and falls back to the bare <KEY>.
type Provider struct {
	BaseURL      string        `envconfig:"CONCEPT2_BASE_URL" default:"https://log.concept2.com"`
	ClientID     string        `envconfig:"CONCEPT2_CLIENT_ID"`
	ClientSecret string        `envconfig:"CONCEPT2_CLIENT_SECRET"`
	RedirectURI  string        `envconfig:"CONCEPT2_REDIRECT_URI"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string        `envconfig:"LOG_FORMAT" default:"console"`
}

func (p Provider) APIBaseURL() string {
	return strings.TrimSuffix(p.BaseURL, "/") + "/api"
}

func (p Provider) AuthorizeURL() string {
	return strings.TrimSuffix(p.BaseURL, "/") + "/oauth/authorize"
}

func (p Provider) TokenURL() string {
	return strings.TrimSuffix(p.BaseURL, "/") + "/oauth/access_token"
}

// Server configures the forwarding server.
type Server struct {
	Provider
	Port                string `envconfig:"PORT" default:"8080"`
	CredentialHeader    string `envconfig:"CREDENTIAL_HEADER" default:"X-Concept2-Token"`
	AllowedPathPrefix   string `envconfig:"ALLOWED_PATH_PREFIX" default:"/users/me"`
	AllowedOrigin       string `envconfig:"ALLOWED_ORIGIN" default:"*"`
	ForwardCacheHeaders bool   `envconfig:"FORWARD_CACHE_HEADERS" default:"true"`
}

// Missing lists the settings the token endpoint needs but did not get.
func (s Server) Missing() []string {
	missing := []string{}
	if s.ClientID == "" {
		missing = append(missing, "CONCEPT2_CLIENT_ID")
	}
	if s.ClientSecret == "" {
		missing = append(missing, "CONCEPT2_CLIENT_SECRET")
	}
	if s.RedirectURI == "" {
		missing = append(missing, "CONCEPT2_REDIRECT_URI")
	}
	return missing
}

// Client configures the command line client.
type Client struct {
	Provider
	Store            string `envconfig:"STORE" default:"file"`
	StorePath        string `envconfig:"STORE_PATH"`
	ProxyURL         string `envconfig:"PROXY_URL"`
	ForwarderURL     string `envconfig:"TOKEN_URL"`
	CredentialHeader string `envconfig:"CREDENTIAL_HEADER" default:"X-Concept2-Token"`
	DatastoreProject string `envconfig:"DATASTORE_PROJECT"`
}

// StoreLocation is what mystore.New expects as location for the configured kind.
func (c Client) StoreLocation() string {
	if c.Store == "datastore" {
		return c.DatastoreProject
	}
	return c.StorePath
}

// UsesForwarder tells whether token requests go through the token forwarder instead of straight
// to the provider with the client secret.
func (c Client) UsesForwarder() bool {
	return c.ForwarderURL != ""
}

func LoadServer() (*Server, error) {
	cfg := new(Server)
	err := load(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadClient() (*Client, error) {
	cfg := new(Client)
	err := load(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.UsesForwarder() && cfg.ClientSecret == "" {
		return nil, fmt.Errorf("either TOKEN_URL or CONCEPT2_CLIENT_SECRET must be set")
	}
	return cfg, nil
}

func load(target interface{}) error {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	err := envconfig.Process(prefix, target)
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
