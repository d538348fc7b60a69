package amadeus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokens struct {
	mock.Mock
}

func (m *MockTokens) Get(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokens) Invalidate() {
	m.Called()
}

func TestClientFactory_Authorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathFlightDates, r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.amadeus+json", r.Header.Get("Accept"))
		assert.Equal(t, "MAD", r.URL.Query().Get("origin"))
		w.Header().Set("Content-Type", "application/vnd.amadeus+json")
		_, _ = w.Write([]byte(`{"data":[{"type":"flight-date","price":{"total":"100.50"}}]}`))
	}))
	defer server.Close()

	tokens := &MockTokens{}
	ctx := context.Background()
	tokens.On("Get", ctx).Return("tok-1", nil).Once()

	factory := NewClientFactory(server.URL, tokens, 15*time.Second, http.DefaultTransport)
	client, err := factory.Authorized(ctx)
	require.NoError(t, err)

	body, err := client.Get(ctx, PathFlightDates, url.Values{"origin": {"MAD"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"type":"flight-date","price":{"total":"100.50"}}]}`, string(body))
	assert.Equal(t, 15*time.Second, factory.httpClient.Timeout)
	tokens.AssertExpectations(t)
}

func TestClientFactory_TokenError(t *testing.T) {
	tokens := &MockTokens{}
	ctx := context.Background()
	tokens.On("Get", ctx).Return("", ErrCredentialsMissing).Once()

	factory := NewClientFactory("http://unused", tokens, time.Second, http.DefaultTransport)
	client, err := factory.Authorized(ctx)

	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrCredentialsMissing)
}

func TestClientFactory_Invalidate(t *testing.T) {
	tokens := &MockTokens{}
	tokens.On("Invalidate").Return().Once()

	NewClientFactory("http://unused", tokens, time.Second, nil).Invalidate()

	tokens.AssertExpectations(t)
}

func TestClient_Get_UpstreamStatus(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"errors":[{"code":425,"title":"INVALID DATE"}]}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"errors":[{"code":38192,"title":"Access token expired"}]}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClientFactory(server.URL, nil, time.Second, nil).newClient("t")
			_, err := client.Get(context.Background(), PathFlightDestinations, nil)

			var upErr *UpstreamError
			require.True(t, errors.As(err, &upErr))
			assert.Equal(t, tc.status, upErr.Status)
			assert.Equal(t, tc.body, string(upErr.Body))
			assert.Equal(t, tc.status, StatusOf(err))
			assert.Equal(t, tc.status == http.StatusUnauthorized, IsUnauthorized(err))
		})
	}
}

func TestClient_Get_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClientFactory(baseURL, nil, time.Second, nil).newClient("t")
	_, err := client.Get(context.Background(), PathFlightDates, nil)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Zero(t, upErr.Status)
	assert.Error(t, upErr.Err)
	assert.False(t, IsUnauthorized(err))
}
