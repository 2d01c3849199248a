package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	validToken   string
	refreshToken string
	refreshes    atomic.Int32
	calls        atomic.Int32
	wrapRefresh  bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh_token", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != f.refreshToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Invalid refresh token"}}`))
			return
		}
		if f.wrapRefresh {
			_, _ = w.Write([]byte(`{"success":true,"data":{"access_token":"` + f.validToken + `","token_type":"Bearer"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"` + f.validToken + `"}`))
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+f.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Invalid or expired token"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"phone":"08123456789"}}`))
	})
	return mux
}

type profile struct {
	Phone string `json:"phone"`
}

func TestClient_AttachesBearer(t *testing.T) {
	api := &fakeAPI{validToken: "a1", refreshToken: "r1"}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	c := New(srv.URL + "/")
	c.Storage().SetTokens("a1", "r1")

	var p profile
	require.NoError(t, c.Get(context.Background(), "/profile", &p))
	assert.Equal(t, "08123456789", p.Phone)
	assert.Zero(t, api.refreshes.Load())
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	for _, wrap := range []bool{false, true} {
		api := &fakeAPI{validToken: "a2", refreshToken: "r1", wrapRefresh: wrap}
		srv := httptest.NewServer(api.handler())

		c := New(srv.URL)
		c.Storage().SetTokens("stale", "r1")

		var p profile
		require.NoError(t, c.Get(context.Background(), "/profile", &p))
		assert.Equal(t, "08123456789", p.Phone)
		assert.Equal(t, int32(1), api.refreshes.Load())
		assert.Equal(t, int32(2), api.calls.Load())
		assert.Equal(t, "a2", c.Storage().AccessToken())
		assert.Equal(t, "r1", c.Storage().RefreshToken())
		srv.Close()
	}
}

func TestClient_RefreshFailureClearsTokens(t *testing.T) {
	api := &fakeAPI{validToken: "a1", refreshToken: "r1"}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	redirected := 0
	c := New(srv.URL, OnAuthFailure(func() { redirected++ }))
	c.Storage().SetTokens("stale", "wrong")

	err := c.Get(context.Background(), "/profile", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_TOKEN", apiErr.Code)

	assert.Equal(t, 1, redirected)
	assert.Empty(t, c.Storage().AccessToken())
	assert.Empty(t, c.Storage().RefreshToken())
	assert.Equal(t, int32(1), api.refreshes.Load())
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestClient_NoRefreshTokenSkipsRefreshCall(t *testing.T) {
	api := &fakeAPI{validToken: "a1", refreshToken: "r1"}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	c := New(srv.URL)
	err := c.Get(context.Background(), "/profile", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, api.refreshes.Load())
}

func TestClient_RetryStillUnauthorized(t *testing.T) {
	var calls, refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			refreshes.Add(1)
			_, _ = w.Write([]byte(`{"access_token":"new"}`))
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Storage().SetTokens("old", "r")
	err := c.Get(context.Background(), "/anything", nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "new", c.Storage().AccessToken())
}

func TestClient_PostSendsBodyAndDecodesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "SAVE5K", body["code"])
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"VOUCHER_NOT_FOUND","message":"Voucher not found"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Post(context.Background(), "/checkout/sessions/x/voucher", map[string]string{"code": "SAVE5K"}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "VOUCHER_NOT_FOUND", apiErr.Code)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
