package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestService() *GoogleOAuthService {
	return NewGoogleOAuthService(GoogleOAuthConfig{
		ClientID:           "client",
		ClientSecret:       "secret",
		RedirectURL:        "http://localhost:8080/api/v1/auth/google/callback",
		FrontendSuccessURL: "http://localhost:3000/auth/success",
		FrontendErrorURL:   "http://localhost:3000/login?source=google",
		StateSecret:        "state-secret",
		StateTTL:           time.Minute,
	})
}

func TestState_RoundTrip(t *testing.T) {
	svc := newTestService()
	state, err := svc.NewState(time.Now())
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyState(state))
}

func TestState_Rejections(t *testing.T) {
	svc := newTestService()

	expired, err := svc.NewState(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.ErrorIs(t, svc.VerifyState(expired), ErrInvalidState)

	other := NewGoogleOAuthService(GoogleOAuthConfig{StateSecret: "another-secret"})
	forged, err := other.NewState(time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, svc.VerifyState(forged), ErrInvalidState)

	assert.ErrorIs(t, svc.VerifyState(""), ErrInvalidState)
	assert.ErrorIs(t, svc.VerifyState("not-a-token"), ErrInvalidState)
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, newTestService().IsConfigured())
	assert.False(t, NewGoogleOAuthService(GoogleOAuthConfig{StateSecret: "x"}).IsConfigured())
}

func TestGetAuthURL_CarriesState(t *testing.T) {
	u, err := url.Parse(newTestService().GetAuthURL("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))
}

func TestRedirects(t *testing.T) {
	svc := newTestService()

	ok, err := url.Parse(svc.SuccessRedirect("acc", "ref"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/success", ok.Path)
	assert.Equal(t, "acc", ok.Query().Get("accessToken"))
	assert.Equal(t, "ref", ok.Query().Get("refreshToken"))

	failed, err := url.Parse(svc.ErrorRedirect("pending_approval"))
	require.NoError(t, err)
	assert.Equal(t, "google", failed.Query().Get("source"))
	assert.Equal(t, "pending_approval", failed.Query().Get("error"))
}

func TestGetUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g-1","email":"a@example.com","verified_email":true,"name":"Asha"}`))
	}))
	defer srv.Close()

	svc := newTestService()
	svc.userInfoURL = srv.URL

	info, err := svc.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
	require.NoError(t, err)
	assert.Equal(t, "g-1", info.ID)
	assert.Equal(t, "a@example.com", info.Email)
	assert.True(t, info.VerifiedEmail)
}

func TestGetUserInfo_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newTestService()
	svc.userInfoURL = srv.URL

	_, err := svc.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "tok"})
	assert.ErrorIs(t, err, ErrFailedToGetUser)
}
