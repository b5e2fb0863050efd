package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MarcGrol/ergsync/lib/mylog"
	"github.com/MarcGrol/ergsync/lib/mystore"
	"github.com/MarcGrol/ergsync/lib/mytime"
	"github.com/MarcGrol/ergsync/services/oauth/oauthclient"
)

// Manager owns the single persisted session of a client.
type Manager struct {
	store    mystore.Store
	endpoint TokenEndpoint
	nower    mytime.Nower
	logger   mylog.Logger
}

func NewManager(store mystore.Store, endpoint TokenEndpoint, nower mytime.Nower) *Manager {
	return &Manager{
		store:    store,
		endpoint: endpoint,
		nower:    nower,
		logger:   mylog.New("session"),
	}
}

func (m *Manager) Save(c context.Context, record TokenRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error encoding token record: %w", err)
	}
	err = m.store.Put(c, StorageKey, string(value))
	if err != nil {
		return fmt.Errorf("error storing token record: %w", err)
	}
	return nil
}

// Load returns nil when nothing is stored or the stored value is unreadable.
func (m *Manager) Load(c context.Context) (*TokenRecord, error) {
	value, exists, err := m.store.Get(c, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("error fetching token record: %w", err)
	}
	if !exists {
		return nil, nil
	}

	record := TokenRecord{}
	err = json.Unmarshal([]byte(value), &record)
	if err != nil {
		m.logger.Log(c, StorageKey, mylog.SeverityWarn, "Ignoring malformed token record: %s", err)
		return nil, nil
	}
	return &record, nil
}

func (m *Manager) Clear(c context.Context) error {
	err := m.store.Delete(c, StorageKey)
	if err != nil {
		return fmt.Errorf("error removing token record: %w", err)
	}
	return nil
}

// IsExpired is true once now is within ExpiryMargin of the provider side expiry.
// A record without timing information never expires.
func (m *Manager) IsExpired(record TokenRecord) bool {
	expiresAt, known := record.ExpiresAt()
	if !known {
		return false
	}
	return !m.nower.Now().Before(expiresAt.Add(-ExpiryMargin))
}

func (m *Manager) IsAuthenticated(c context.Context) bool {
	record, err := m.Load(c)
	if err != nil {
		m.logger.Log(c, StorageKey, mylog.SeverityWarn, "Error checking authentication: %s", err)
		return false
	}
	return record != nil && record.AccessToken != ""
}

func (m *Manager) ExchangeCode(c context.Context, code string) (TokenRecord, error) {
	status, body, err := m.requestToken(c, oauthclient.GrantRequest{
		GrantType: oauthclient.GrantTypeAuthorizationCode,
		Code:      code,
	})
	if err != nil {
		return TokenRecord{}, err
	}
	record, ok := m.parseTokenResponse(status, body)
	if !ok {
		return TokenRecord{}, &AuthExchangeError{StatusCode: status, Body: string(body)}
	}
	return record, nil
}

func (m *Manager) Refresh(c context.Context, refreshToken string) (TokenRecord, error) {
	status, body, err := m.requestToken(c, oauthclient.GrantRequest{
		GrantType:    oauthclient.GrantTypeRefreshToken,
		RefreshToken: refreshToken,
	})
	if err != nil {
		return TokenRecord{}, err
	}
	record, ok := m.parseTokenResponse(status, body)
	if !ok {
		return TokenRecord{}, &RefreshError{StatusCode: status, Body: string(body)}
	}
	return record, nil
}

// GetValidAccessToken returns a usable access token, refreshing the stored session when it is
// about to expire. When the refresh fails the session is removed.
func (m *Manager) GetValidAccessToken(c context.Context) (string, error) {
	record, err := m.Load(c)
	if err != nil {
		return "", err
	}
	if record == nil || record.AccessToken == "" {
		return "", &NotAuthenticatedError{}
	}

	if !m.IsExpired(*record) || record.RefreshToken == "" {
		return record.AccessToken, nil
	}

	m.logger.Log(c, StorageKey, mylog.SeverityInfo, "Access token expires soon: refreshing")

	refreshed, err := m.Refresh(c, record.RefreshToken)
	if err != nil {
		m.logger.Log(c, StorageKey, mylog.SeverityWarn, "Refresh failed, dropping session: %s", err)
		clearErr := m.Clear(c)
		if clearErr != nil {
			m.logger.Log(c, StorageKey, mylog.SeverityError, "Error dropping session: %s", clearErr)
		}
		return "", &SessionExpiredError{Cause: err}
	}

	err = m.Save(c, refreshed)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Login exchanges an authorization code and persists the resulting session.
func (m *Manager) Login(c context.Context, code string) (TokenRecord, error) {
	record, err := m.ExchangeCode(c, code)
	if err != nil {
		return TokenRecord{}, err
	}
	err = m.Save(c, record)
	if err != nil {
		return TokenRecord{}, err
	}
	m.logger.Log(c, StorageKey, mylog.SeverityInfo, "Session established")
	return record, nil
}

func (m *Manager) Logout(c context.Context) error {
	return m.Clear(c)
}

func (m *Manager) requestToken(c context.Context, req oauthclient.GrantRequest) (int, []byte, error) {
	status, body, err := m.endpoint.RequestToken(c, req)
	if err != nil {
		if errors.Is(err, oauthclient.ErrNotConfigured) || errors.Is(err, oauthclient.ErrRedirectURIRequired) {
			return 0, nil, err
		}
		return 0, nil, &NetworkError{Err: err}
	}
	return status, body, nil
}

func (m *Manager) parseTokenResponse(status int, body []byte) (TokenRecord, bool) {
	if status < 200 || status >= 300 {
		return TokenRecord{}, false
	}
	record := TokenRecord{}
	err := json.Unmarshal(body, &record)
	if err != nil || record.AccessToken == "" {
		return TokenRecord{}, false
	}
	obtainedAt := m.nower.Now().UnixMilli()
	record.ObtainedAt = &obtainedAt
	return record, true
}
