package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abelbrown/mosaic/internal/logging"
	"github.com/abelbrown/mosaic/internal/source"
)

// safetyMargin is subtracted from the server TTL so a token is refreshed
// before it actually expires mid-request.
const safetyMargin = 300 * time.Second

// tokenSource caches an application-only OAuth2 bearer token.
//
// Concurrent callers observing an expired token share one in-flight
// exchange via singleflight; a redundant exchange would be harmless but
// wasteful, so it is avoided entirely.
type tokenSource struct {
	clientID     string
	clientSecret string
	authURL      string
	userAgent    string
	client       *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

func newTokenSource(clientID, clientSecret, authURL, userAgent string, client *http.Client) *tokenSource {
	return &tokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      authURL,
		userAgent:    userAgent,
		client:       client,
	}
}

// Token returns a valid bearer token, exchanging credentials if the
// cached one is unset or inside the expiry margin.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	if ts.token != "" && time.Now().Before(ts.expiresAt) {
		token := ts.token
		ts.mu.Unlock()
		return token, nil
	}
	ts.mu.Unlock()

	v, err, _ := ts.group.Do("token", func() (any, error) {
		// Re-check under the flight: another caller may have refreshed
		// between our unlock and the flight starting.
		ts.mu.Lock()
		if ts.token != "" && time.Now().Before(ts.expiresAt) {
			token := ts.token
			ts.mu.Unlock()
			return token, nil
		}
		ts.mu.Unlock()
		return ts.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// exchange performs the client-credentials grant and caches the result.
func (ts *tokenSource) exchange(ctx context.Context) (string, error) {
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.authURL, body)
	if err != nil {
		return "", source.Auth("failed to create token request", err)
	}
	req.SetBasicAuth(ts.clientID, ts.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", ts.userAgent)

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", source.Auth("failed to reach token endpoint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", source.Auth(fmt.Sprintf("token exchange failed: %d %s", resp.StatusCode, resp.Status), nil)
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return "", source.Auth("failed to decode token response", err)
	}
	if grant.AccessToken == "" {
		return "", source.Auth("token exchange returned no access token", nil)
	}

	ttl := time.Duration(grant.ExpiresIn)*time.Second - safetyMargin
	if ttl < 0 {
		ttl = 0
	}

	ts.mu.Lock()
	ts.token = grant.AccessToken
	ts.expiresAt = time.Now().Add(ttl)
	ts.mu.Unlock()

	logging.Debug("reddit token refreshed", "ttl", ttl)
	return grant.AccessToken, nil
}

// invalidate drops the cached token so the next call re-exchanges.
func (ts *tokenSource) invalidate() {
	ts.mu.Lock()
	ts.token = ""
	ts.expiresAt = time.Time{}
	ts.mu.Unlock()
}
