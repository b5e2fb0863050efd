package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/ergsync/lib/mystore"
	"github.com/MarcGrol/ergsync/lib/mytime"
	"github.com/MarcGrol/ergsync/services/oauth/oauthclient"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *Manager, *MockTokenEndpoint, *mystore.InMemoryStore, *mytime.FixedNower) {
	c := context.TODO()
	store, _, err := mystore.NewInMemoryStore(c)
	assert.NoError(t, err)
	endpoint := NewMockTokenEndpoint(ctrl)
	nower := &mytime.FixedNower{Time: mytime.ExampleTime}
	return c, NewManager(store, endpoint, nower), endpoint, store, nower
}

func TestStorage(t *testing.T) {
	t.Run("save then load", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, _, _ := setup(t, ctrl)

		// given
		record := TokenRecord{
			AccessToken:  "abc",
			RefreshToken: "def",
			ExpiresIn:    int64Ptr(3600),
			TokenType:    "Bearer",
			Scope:        "user:read,results:read",
			ObtainedAt:   int64Ptr(mytime.ExampleTime.UnixMilli()),
		}

		// when
		err := sut.Save(c, record)
		assert.NoError(t, err)
		loaded, err := sut.Load(c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, &record, loaded)
		assert.True(t, sut.IsAuthenticated(c))
	})

	t.Run("nothing stored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, _, _ := setup(t, ctrl)

		loaded, err := sut.Load(c)

		assert.NoError(t, err)
		assert.Nil(t, loaded)
		assert.False(t, sut.IsAuthenticated(c))
	})

	t.Run("malformed record is absent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, store, _ := setup(t, ctrl)

		// given
		store.Items[StorageKey] = "{not json"

		// when
		loaded, err := sut.Load(c)

		// then
		assert.NoError(t, err)
		assert.Nil(t, loaded)
		assert.False(t, sut.IsAuthenticated(c))
	})

	t.Run("clear", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, store, _ := setup(t, ctrl)

		// given
		err := sut.Save(c, TokenRecord{AccessToken: "abc"})
		assert.NoError(t, err)

		// when
		err = sut.Logout(c)

		// then
		assert.NoError(t, err)
		_, exists := store.Items[StorageKey]
		assert.False(t, exists)
		assert.False(t, sut.IsAuthenticated(c))
	})

	t.Run("store failure is reported", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mystore.NewMockStore(ctrl)
		sut := NewManager(store, NewMockTokenEndpoint(ctrl), &mytime.FixedNower{Time: mytime.ExampleTime})

		store.EXPECT().Get(gomock.Any(), StorageKey).Return("", false, errors.New("disk gone"))

		_, err := sut.Load(context.TODO())

		assert.ErrorContains(t, err, "disk gone")
	})
}

func TestIsExpired(t *testing.T) {
	obtainedAt := mytime.ExampleTime.UnixMilli()

	testCases := []struct {
		name     string
		record   TokenRecord
		now      time.Time
		expected bool
	}{
		{
			name:     "no timing information",
			record:   TokenRecord{AccessToken: "abc"},
			now:      mytime.ExampleTime.Add(100 * time.Hour),
			expected: false,
		},
		{
			name:     "no expires_in",
			record:   TokenRecord{AccessToken: "abc", ObtainedAt: &obtainedAt},
			now:      mytime.ExampleTime.Add(100 * time.Hour),
			expected: false,
		},
		{
			name:     "fresh",
			record:   TokenRecord{AccessToken: "abc", ObtainedAt: &obtainedAt, ExpiresIn: int64Ptr(3600)},
			now:      mytime.ExampleTime.Add(10 * time.Minute),
			expected: false,
		},
		{
			name:     "just before margin",
			record:   TokenRecord{AccessToken: "abc", ObtainedAt: &obtainedAt, ExpiresIn: int64Ptr(3600)},
			now:      mytime.ExampleTime.Add(55*time.Minute - time.Millisecond),
			expected: false,
		},
		{
			name:     "at margin",
			record:   TokenRecord{AccessToken: "abc", ObtainedAt: &obtainedAt, ExpiresIn: int64Ptr(3600)},
			now:      mytime.ExampleTime.Add(55 * time.Minute),
			expected: true,
		},
		{
			name:     "past expiry",
			record:   TokenRecord{AccessToken: "abc", ObtainedAt: &obtainedAt, ExpiresIn: int64Ptr(3600)},
			now:      mytime.ExampleTime.Add(2 * time.Hour),
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sut := NewManager(nil, nil, &mytime.FixedNower{Time: tc.now})
			assert.Equal(t, tc.expected, sut.IsExpired(tc.record))
		})
	}
}

func TestExchange(t *testing.T) {
	t.Run("code exchange stamps obtained_at locally", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, endpoint, _, _ := setup(t, ctrl)

		// given
		endpoint.EXPECT().RequestToken(gomock.Any(), oauthclient.GrantRequest{
			GrantType: oauthclient.GrantTypeAuthorizationCode,
			Code:      "xyz",
		}).Return(http.StatusOK, []byte(`{"access_token":"abc","refresh_token":"def","expires_in":3600,"token_type":"Bearer","obtained_at":1}`), nil)

		// when
		record, err := sut.Login(c, "xyz")

		// then
		assert.NoError(t, err)
		assert.Equal(t, "abc", record.AccessToken)
		assert.Equal(t, "def", record.RefreshToken)
		assert.Equal(t, int64(3600), *record.ExpiresIn)
		assert.Equal(t, mytime.ExampleTime.UnixMilli(), *record.ObtainedAt)

		stored, err := sut.Load(c)
		assert.NoError(t, err)
		assert.Equal(t, &record, stored)
	})

	t.Run("code exchange rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, endpoint, _, _ := setup(t, ctrl)

		endpoint.EXPECT().RequestToken(gomock.Any(), gomock.Any()).Return(http.StatusBadRequest, []byte(`{"error":"invalid_grant"}`), nil)

		_, err := sut.Login(c, "xyz")

		exchangeErr := &AuthExchangeError{}
		assert.ErrorAs(t, err, &exchangeErr)
		assert.Equal(t, http.StatusBadRequest, exchangeErr.StatusCode)
		assert.Equal(t, `{"error":"invalid_grant"}`, exchangeErr.Body)
		assert.False(t, sut.IsAuthenticated(c))
	})

	t.Run("transport failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, endpoint, _, _ := setup(t, ctrl)

		endpoint.EXPECT().RequestToken(gomock.Any(), gomock.Any()).Return(0, nil, errors.New("connection refused"))

		_, err := sut.ExchangeCode(c, "xyz")

		networkErr := &NetworkError{}
		assert.ErrorAs(t, err, &networkErr)
		assert.False(t, NeedsReauth(err))
	})

	t.Run("refresh rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, endpoint, _, _ := setup(t, ctrl)

		endpoint.EXPECT().RequestToken(gomock.Any(), oauthclient.GrantRequest{
			GrantType:    oauthclient.GrantTypeRefreshToken,
			RefreshToken: "def",
		}).Return(http.StatusUnauthorized, []byte(`revoked`), nil)

		_, err := sut.Refresh(c, "def")

		refreshErr := &RefreshError{}
		assert.ErrorAs(t, err, &refreshErr)
		assert.Equal(t, http.StatusUnauthorized, refreshErr.StatusCode)
		assert.Equal(t, "revoked", refreshErr.Body)
	})
}

func TestGetValidAccessToken(t *testing.T) {
	obtainedAt := mytime.ExampleTime.UnixMilli()

	t.Run("no session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, _, _ := setup(t, ctrl)

		_, err := sut.GetValidAccessToken(c)

		notAuthenticated := &NotAuthenticatedError{}
		assert.ErrorAs(t, err, &notAuthenticated)
		assert.True(t, NeedsReauth(err))
	})

	t.Run("empty access token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, _, _ := setup(t, ctrl)
		assert.NoError(t, sut.Save(c, TokenRecord{RefreshToken: "def"}))

		_, err := sut.GetValidAccessToken(c)

		notAuthenticated := &NotAuthenticatedError{}
		assert.ErrorAs(t, err, &notAuthenticated)
	})

	t.Run("fresh token is returned without provider call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, _, _ := setup(t, ctrl)
		assert.NoError(t, sut.Save(c, TokenRecord{AccessToken: "abc", RefreshToken: "def", ExpiresIn: int64Ptr(3600), ObtainedAt: &obtainedAt}))

		token, err := sut.GetValidAccessToken(c)

		assert.NoError(t, err)
		assert.Equal(t, "abc", token)
	})

	t.Run("expired without refresh token is returned as is", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, _, _, nower := setup(t, ctrl)
		assert.NoError(t, sut.Save(c, TokenRecord{AccessToken: "abc", ExpiresIn: int64Ptr(3600), ObtainedAt: &obtainedAt}))
		nower.Time = mytime.ExampleTime.Add(2 * time.Hour)

		token, err := sut.GetValidAccessToken(c)

		assert.NoError(t, err)
		assert.Equal(t, "abc", token)
	})

	t.Run("expired token is refreshed and persisted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, endpoint, _, nower := setup(t, ctrl)

		// given
		assert.NoError(t, sut.Save(c, TokenRecord{AccessToken: "abc", RefreshToken: "def", ExpiresIn: int64Ptr(3600), ObtainedAt: &obtainedAt}))
		nower.Time = mytime.ExampleTime.Add(58 * time.Minute)
		endpoint.EXPECT().RequestToken(gomock.Any(), oauthclient.GrantRequest{
			GrantType:    oauthclient.GrantTypeRefreshToken,
			RefreshToken: "def",
		}).Return(http.StatusOK, []byte(`{"access_token":"new","refresh_token":"newer","expires_in":3600}`), nil)

		// when
		token, err := sut.GetValidAccessToken(c)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "new", token)

		stored, err := sut.Load(c)
		assert.NoError(t, err)
		assert.Equal(t, "new", stored.AccessToken)
		assert.Equal(t, "newer", stored.RefreshToken)
		assert.Equal(t, nower.Time.UnixMilli(), *stored.ObtainedAt)
	})

	t.Run("failed refresh drops the session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c, sut, endpoint, _, nower := setup(t, ctrl)

		// given
		assert.NoError(t, sut.Save(c, TokenRecord{AccessToken: "abc", RefreshToken: "def", ExpiresIn: int64Ptr(3600), ObtainedAt: &obtainedAt}))
		nower.Time = mytime.ExampleTime.Add(2 * time.Hour)
		endpoint.EXPECT().RequestToken(gomock.Any(), gomock.Any()).Return(http.StatusBadRequest, []byte(`{"error":"invalid_grant"}`), nil)

		// when
		_, err := sut.GetValidAccessToken(c)

		// then
		expired := &SessionExpiredError{}
		assert.ErrorAs(t, err, &expired)
		refreshErr := &RefreshError{}
		assert.ErrorAs(t, err, &refreshErr)
		assert.True(t, NeedsReauth(err))
		assert.False(t, sut.IsAuthenticated(c))
	})
}
