package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/fitcompare/internal/client/storage"
	"github.com/atinyakov/fitcompare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripperFunc makes it easy to stub http.Client.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(store storage.Store, fn roundTripperFunc) *Client {
	return NewClient(Config{BaseURL: "http://example.com", Prefix: "/api"}, StoredToken{Store: store},
		WithHTTPClient(&http.Client{Transport: fn, Timeout: time.Second}))
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestResolveBaseURL(t *testing.T) {
	cases := []struct {
		base, prefix, want string
	}{
		{"http://localhost:8000", "/api", "http://localhost:8000/api"},
		{"http://localhost:8000///", "api", "http://localhost:8000/api"},
		{"http://localhost:8000/", "//api/v1/", "http://localhost:8000/api/v1"},
		{"http://localhost:8000", "", "http://localhost:8000"},
		{"http://localhost:8000", "/", "http://localhost:8000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveBaseURL(tc.base, tc.prefix), "base=%q prefix=%q", tc.base, tc.prefix)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	store := storage.NewMemoryStore()
	var seen []string
	c := newTestClient(store, func(req *http.Request) (*http.Response, error) {
		seen = append(seen, req.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `{"id":"u1","email":"a@b.c"}`), nil
	})

	_, err := c.Me(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Set(storage.TokenKey, "abc123"))
	_, err = c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer abc123"}, seen)
}

func TestLogin_FormEncoded(t *testing.T) {
	c := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "http://example.com/api/auth/login", req.URL.String())
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

		body, _ := io.ReadAll(req.Body)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", form.Get("username"))
		assert.Equal(t, "secret", form.Get("password"))

		return jsonResponse(http.StatusOK, `{"access_token":"abc123","token_type":"bearer","user":{"email":"user@example.com"}}`), nil
	})

	resp, err := c.Login(context.Background(), models.Credentials{Email: "user@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user@example.com", resp.User.Email)
}

func TestErrorDetail(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`, "Incorrect email or password"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"plain text", http.StatusInternalServerError, "internal error\n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})
			_, err := c.GetProduct(context.Background(), 1)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.wantDetail, apiErr.Detail)
			assert.True(t, IsStatus(err, tc.status))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Email already registered", UserMessage(&APIError{Status: 400, Detail: "Email already registered"}, "fallback"))
	assert.Equal(t, "fallback", UserMessage(&APIError{Status: 500}, "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("network down"), "fallback"))
}

func TestNetworkError(t *testing.T) {
	c := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})
	_, err := c.ListFavorites(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestInvalidJSON(t *testing.T) {
	c := newTestClient(nil, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	})
	_, err := c.ListProducts(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response")
}

func TestEndpoints_AgainstServer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "whey", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `{"items":[{"id":1,"name":"Whey","price":29.9}],"total":1,"page":1,"page_size":12}`)
	})
	mux.HandleFunc("/api/favorites/7", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"product_id":7}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/programs/coaches/3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":3,"name":"Sam"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", Prefix: "api"}, nil)
	ctx := context.Background()

	page, err := c.ListProducts(ctx, url.Values{"q": {"whey"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Whey", page.Items[0].Name)

	require.NoError(t, c.AddFavorite(ctx, 7))
	require.NoError(t, c.RemoveFavorite(ctx, 7))

	coach, err := c.GetCoach(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Sam", coach.Name)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestWithToken_OverridesStore(t *testing.T) {
	store := storage.NewMemoryStore()
	_ = store.Set(storage.TokenKey, "stored")
	var got string
	c := newTestClient(store, func(req *http.Request) (*http.Response, error) {
		got = req.Header.Get("Authorization")
		return jsonResponse(http.StatusOK, `{"id":"u1"}`), nil
	})

	_, err := c.Me(WithToken(context.Background(), "fresh"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", got)
}
