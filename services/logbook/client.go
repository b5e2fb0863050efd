package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MarcGrol/ergsync/lib/myhttpclient"
	"github.com/MarcGrol/ergsync/lib/mylog"
	"github.com/MarcGrol/ergsync/services/session"
)

// Sessions is the part of session.Manager the client relies on.
//
//go:generate mockgen -source=client.go -package logbook -destination sessions_mock.go Sessions
type Sessions interface {
	GetValidAccessToken(c context.Context) (string, error)
	Load(c context.Context) (*session.TokenRecord, error)
	Refresh(c context.Context, refreshToken string) (session.TokenRecord, error)
	Save(c context.Context, record session.TokenRecord) error
	Clear(c context.Context) error
}

var _ Sessions = (*session.Manager)(nil)

type Client struct {
	sessions Sessions
	sender   myhttpclient.HTTPSender
	target   Target
	logger   mylog.Logger
}

func NewClient(sessions Sessions, sender myhttpclient.HTTPSender, target Target) *Client {
	return &Client{
		sessions: sessions,
		sender:   sender,
		target:   target,
		logger:   mylog.New("logbook"),
	}
}

type requestState int

const (
	stateFirstAttempt requestState = iota
	stateRefreshing
	stateRetryAttempt
	stateSessionExpired
	stateDone
)

var errNoRefreshToken = errors.New("no refresh token available")

// Request fetches endpointPath with a valid access token. A 401 triggers exactly one
// refresh and retry; when that does not help the session is dropped.
func (cl *Client) Request(c context.Context, endpointPath string) (json.RawMessage, error) {
	accessToken, err := cl.sessions.GetValidAccessToken(c)
	if err != nil {
		return nil, err
	}

	var (
		resp  myhttpclient.Response
		cause error
	)

	state := stateFirstAttempt
	for {
		switch state {
		case stateFirstAttempt:
			resp, err = cl.sender.Send(c, cl.target.Build(endpointPath, accessToken))
			if err != nil {
				cl.logger.Log(c, endpointPath, mylog.SeverityError, "Network error calling provider: %s", err)
				return nil, &session.NetworkError{Err: err}
			}
			if resp.StatusCode == http.StatusUnauthorized {
				state = stateRefreshing
				continue
			}
			state = stateDone

		case stateRefreshing:
			cl.logger.Log(c, endpointPath, mylog.SeverityInfo, "Access token rejected: refreshing")
			record, err := cl.sessions.Load(c)
			if err != nil {
				return nil, err
			}
			if record == nil || record.RefreshToken == "" {
				cause = errNoRefreshToken
				state = stateSessionExpired
				continue
			}
			refreshed, err := cl.sessions.Refresh(c, record.RefreshToken)
			if err != nil {
				cause = err
				state = stateSessionExpired
				continue
			}
			err = cl.sessions.Save(c, refreshed)
			if err != nil {
				return nil, err
			}
			accessToken = refreshed.AccessToken
			state = stateRetryAttempt

		case stateRetryAttempt:
			resp, err = cl.sender.Send(c, cl.target.Build(endpointPath, accessToken))
			if err != nil {
				cause = &session.NetworkError{Err: err}
				state = stateSessionExpired
				continue
			}
			if !resp.IsSuccess() {
				cause = newAPIRequestError(resp.StatusCode, resp.Body)
				state = stateSessionExpired
				continue
			}
			state = stateDone

		case stateSessionExpired:
			cl.logger.Log(c, endpointPath, mylog.SeverityWarn, "Session could not be renewed: %s", cause)
			err = cl.sessions.Clear(c)
			if err != nil {
				cl.logger.Log(c, endpointPath, mylog.SeverityError, "Error dropping session: %s", err)
			}
			return nil, &session.SessionExpiredError{Cause: cause}

		case stateDone:
			if !resp.IsSuccess() {
				apiErr := newAPIRequestError(resp.StatusCode, resp.Body)
				cl.logger.Log(c, endpointPath, mylog.SeverityError, "%s", apiErr)
				return nil, apiErr
			}
			if !json.Valid(resp.Body) {
				return nil, fmt.Errorf("invalid JSON in response for %s", endpointPath)
			}
			return json.RawMessage(resp.Body), nil
		}
	}
}

func (cl *Client) FetchUserProfile(c context.Context) (Profile, error) {
	raw, err := cl.Request(c, "/users/me")
	if err != nil {
		return nil, err
	}
	envelope := profileEnvelope{}
	err = json.Unmarshal(raw, &envelope)
	if err != nil {
		return nil, fmt.Errorf("error decoding profile: %w", err)
	}
	return envelope.Data, nil
}

// FetchResultsForYear returns all results logged between January 1st and December 31st of year.
func (cl *Client) FetchResultsForYear(c context.Context, year int) ([]Result, error) {
	return cl.fetchPages(c, func(page int) string {
		return fmt.Sprintf("/users/me/results?from=%d-01-01&to=%d-12-31&page=%d", year, year, page)
	})
}

func (cl *Client) FetchAllResults(c context.Context) ([]Result, error) {
	return cl.fetchPages(c, func(page int) string {
		return fmt.Sprintf("/users/me/results?page=%d", page)
	})
}

// fetchPages keeps asking for the next page while the previous one was full.
// A final page of exactly PageSize costs one extra, empty, request.
func (cl *Client) fetchPages(c context.Context, pathForPage func(page int) string) ([]Result, error) {
	results := []Result{}
	for page := 1; ; page++ {
		raw, err := cl.Request(c, pathForPage(page))
		if err != nil {
			return nil, err
		}
		current := resultPage{}
		err = json.Unmarshal(raw, &current)
		if err != nil {
			return nil, fmt.Errorf("error decoding results page %d: %w", page, err)
		}
		cl.logger.Log(c, "results", mylog.SeverityDebug, "Page %d returned %d results", page, len(current.Data))

		results = append(results, current.Data...)
		if len(current.Data) < PageSize {
			break
		}
	}
	return results, nil
}
