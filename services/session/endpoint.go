package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MarcGrol/ergsync/lib/myhttpclient"
	"github.com/MarcGrol/ergsync/services/oauth/oauthclient"
)

// TokenEndpoint hands a grant to whatever issues tokens and reports the raw outcome.
// An error means no response was obtained.
//
//go:generate mockgen -source=endpoint.go -package session -destination endpoint_mock.go TokenEndpoint
type TokenEndpoint interface {
	RequestToken(c context.Context, req oauthclient.GrantRequest) (int, []byte, error)
}

var _ TokenEndpoint = (*oauthclient.Client)(nil)

type forwarderTokenRequest struct {
	Code         string `json:"code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	GrantType    string `json:"grant_type,omitempty"`
}

type forwarderEndpoint struct {
	url    string
	sender myhttpclient.HTTPSender
}

// NewForwarderEndpoint sends grants as JSON to the token forwarder, which adds the client secret.
func NewForwarderEndpoint(url string, sender myhttpclient.HTTPSender) TokenEndpoint {
	return &forwarderEndpoint{
		url:    url,
		sender: sender,
	}
}

func (fe *forwarderEndpoint) RequestToken(c context.Context, req oauthclient.GrantRequest) (int, []byte, error) {
	body := forwarderTokenRequest{}
	switch req.GrantType {
	case oauthclient.GrantTypeRefreshToken:
		body.RefreshToken = req.RefreshToken
		body.GrantType = oauthclient.GrantTypeRefreshToken
	default:
		body.Code = req.Code
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("error encoding token request: %w", err)
	}

	resp, err := fe.sender.Send(c, myhttpclient.Request{
		Method: http.MethodPost,
		URL:    fe.url,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: payload,
	})
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, resp.Body, nil
}
