package oauthclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"golang.org/x/oauth2"

	"github.com/MarcGrol/ergsync/lib/myhttpclient"
	"github.com/MarcGrol/ergsync/lib/mylog"
)

const (
	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"

	// DefaultScope is a single comma separated value; the provider does not accept space separated scopes.
	DefaultScope = "user:read,results:read"
)

var (
	ErrNotConfigured       = errors.New("client id or client secret not configured")
	ErrRedirectURIRequired = errors.New("redirect uri not configured")
)

type GrantRequest struct {
	GrantType    string
	Code         string
	RefreshToken string
}

type ComposeAuthURLRequest struct {
	AuthURL     string
	ClientID    string
	RedirectURI string
	Scope       string
	State       string
}

type tokenForm struct {
	GrantType    string `form:"grant_type"`
	ClientID     string `form:"client_id"`
	ClientSecret string `form:"client_secret"`
	Code         string `form:"code,omitempty"`
	RedirectURI  string `form:"redirect_uri,omitempty"`
	RefreshToken string `form:"refresh_token,omitempty"`
}

// Client talks to the provider token endpoint with the confidential client credentials.
type Client struct {
	tokenURL     string
	clientID     string
	clientSecret string
	redirectURI  string
	sender       myhttpclient.HTTPSender
	logger       mylog.Logger
}

func NewOAuthClient(tokenURL string, clientID string, clientSecret string, redirectURI string, sender myhttpclient.HTTPSender) *Client {
	return &Client{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		sender:       sender,
		logger:       mylog.New("oauthclient"),
	}
}

// RequestToken posts a form encoded grant to the provider and hands back its status code and
// body without interpretation. Errors are limited to configuration problems (wrapping
// ErrNotConfigured or ErrRedirectURIRequired) and transport failures.
func (oc *Client) RequestToken(c context.Context, req GrantRequest) (int, []byte, error) {
	if oc.clientID == "" || oc.clientSecret == "" {
		return 0, nil, ErrNotConfigured
	}

	form := tokenForm{
		GrantType:    req.GrantType,
		ClientID:     oc.clientID,
		ClientSecret: oc.clientSecret,
	}
	switch req.GrantType {
	case GrantTypeRefreshToken:
		form.RefreshToken = req.RefreshToken
	case GrantTypeAuthorizationCode:
		if oc.redirectURI == "" {
			return 0, nil, ErrRedirectURIRequired
		}
		form.Code = req.Code
		form.RedirectURI = oc.redirectURI
	default:
		return 0, nil, fmt.Errorf("unsupported grant type '%s'", req.GrantType)
	}

	values, err := formcodec.NewEncoder().Encode(form)
	if err != nil {
		return 0, nil, fmt.Errorf("error encoding token form: %w", err)
	}

	resp, err := oc.sender.Send(c, myhttpclient.Request{
		Method: http.MethodPost,
		URL:    oc.tokenURL,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Accept":       "application/json",
		},
		Body: []byte(values.Encode()),
	})
	if err != nil {
		// the url never contains the secret, the form body is not part of the error
		return 0, nil, fmt.Errorf("error requesting %s token: %w", req.GrantType, err)
	}

	oc.logger.Log(c, "", mylog.SeverityInfo, "Token request (%s) -> %d", req.GrantType, resp.StatusCode)

	return resp.StatusCode, resp.Body, nil
}

// ComposeAuthURL builds the browser redirect target that starts the authorization code flow.
func ComposeAuthURL(req ComposeAuthURLRequest) string {
	scope := req.Scope
	if scope == "" {
		scope = DefaultScope
	}
	cfg := oauth2.Config{
		ClientID:    req.ClientID,
		RedirectURL: req.RedirectURI,
		Scopes:      []string{scope},
		Endpoint: oauth2.Endpoint{
			AuthURL: req.AuthURL,
		},
	}
	return cfg.AuthCodeURL(req.State)
}
