package stepik

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// TokenManager obtains and caches the bearer token for the platform API via
// the OAuth2 client-credentials grant. The token is cached process-wide for
// the lifetime of the manager; Invalidate forces a fresh exchange.
//
// Concurrent callers before the first successful exchange share a single
// in-flight request through singleflight, so a cold start issues at most one
// token request no matter how many components ask at once.
type TokenManager struct {
	http         *resty.Client
	tokenURL     string
	clientID     string
	clientSecret string

	mu    sync.RWMutex
	token string

	group singleflight.Group
}

// NewTokenManager creates a token manager for the given credentials. The
// resty client is shared with the API client so both honor the same timeout.
func NewTokenManager(http *resty.Client, baseURL, clientID, clientSecret string) *TokenManager {
	return &TokenManager{
		http:         http,
		tokenURL:     baseURL + "/oauth2/token/",
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Token returns the cached token, performing the credential exchange on the
// first call or after Invalidate.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	v, err, _ := m.group.Do("token", func() (interface{}, error) {
		// Re-check under the flight: a racing caller may have just filled it.
		m.mu.RLock()
		cached := m.token
		m.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		fresh, err := m.exchange(ctx)
		if err != nil {
			return "", err
		}

		m.mu.Lock()
		m.token = fresh
		m.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next Token call re-exchanges.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

func (m *TokenManager) exchange(ctx context.Context) (string, error) {
	var body tokenResponse
	resp, err := m.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     m.clientID,
			"client_secret": m.clientSecret,
		}).
		SetResult(&body).
		Post(m.tokenURL)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", &AuthError{Err: &HTTPError{
			Status: resp.StatusCode(),
			URL:    m.tokenURL,
			Body:   resp.String(),
		}}
	}
	if body.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("token response contains no access_token")}
	}
	return body.AccessToken, nil
}
