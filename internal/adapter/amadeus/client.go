// Package amadeus implements the flight and hotel provider ports against
// the Amadeus Self-Service APIs.
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/port/cache"
	"github.com/catapulthq/catapult/internal/resilience"
)

// Client holds an authenticated Amadeus API session. Tokens are obtained
// via the client-credentials grant and refreshed shortly before expiry.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	breaker      *resilience.Breaker
	cache        cache.Cache
	cacheTTL     time.Duration

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates an Amadeus API client from config.
func NewClient(cfg config.Amadeus) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// SetCache attaches a result cache. Search results are cached per query.
func (c *Client) SetCache(cc cache.Cache, ttl time.Duration) {
	c.cache = cc
	c.cacheTTL = ttl
}

// primaryAirports maps well-known city names to their primary airport.
// Cities outside this map are passed through as-is, assuming the caller
// already supplied an IATA code.
var primaryAirports = map[string]string{
	"chicago":       "ORD",
	"new york":      "JFK",
	"washington":    "IAD",
	"los angeles":   "LAX",
	"houston":       "IAH",
	"tokyo":         "HND",
	"london":        "LHR",
	"paris":         "CDG",
	"philadelphia":  "PHL",
	"san francisco": "SFO",
	"dallas":        "DFW",
	"seattle":       "SEA",
}

// CityToIATA resolves a city name to an airport code.
func CityToIATA(city string) string {
	key := strings.ToLower(strings.TrimSpace(city))
	if code, ok := primaryAirports[key]; ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(city))
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid access token, requesting a new one when the cached
// token is absent or within a minute of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("amadeus auth error %d: %s", resp.StatusCode, string(data))
	}

	var tok tokenResponse
	if err := json.Unmarshal(data, &tok); err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}
	c.accessToken = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var result []byte
	call := func() error {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}

		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			// Token may have been revoked server side; drop it so the
			// next attempt re-authenticates.
			c.mu.Lock()
			c.accessToken = ""
			c.mu.Unlock()
			return fmt.Errorf("amadeus API error %d: %s", resp.StatusCode, string(data))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("amadeus API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}

// cachedGet serves path+query from the result cache when possible, falling
// back to the API and storing the response on a miss.
func (c *Client) cachedGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.cache == nil {
		return c.doGet(ctx, path, query)
	}
	key := "amadeus:" + path + "?" + query.Encode()
	if data, found, err := c.cache.Get(ctx, key); err == nil && found {
		return data, nil
	}
	data, err := c.doGet(ctx, path, query)
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, c.cacheTTL)
	return data, nil
}
