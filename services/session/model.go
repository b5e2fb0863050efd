package session

import "time"

const (
	// StorageKey is the single key the session record lives under.
	StorageKey = "concept2_token"

	// ExpiryMargin treats a token as expired this long before the provider would.
	ExpiryMargin = 5 * time.Minute
)

// TokenRecord is the persisted session. ObtainedAt is stamped locally in epoch milliseconds;
// whatever the provider sends under that name is overwritten.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    *int64 `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ObtainedAt   *int64 `json:"obtained_at,omitempty"`
}

// ExpiresAt reports the provider side expiry, if known.
func (r TokenRecord) ExpiresAt() (time.Time, bool) {
	if r.ObtainedAt == nil || r.ExpiresIn == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*r.ObtainedAt + *r.ExpiresIn*1000), true
}
