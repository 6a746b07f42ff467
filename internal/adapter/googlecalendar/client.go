// Package googlecalendar implements the calendar provider port against the
// Google Calendar v3 REST API. Authentication reuses a persisted OAuth token
// from a prior consent flow; the adapter refreshes it but never initiates a
// new interactive grant.
package googlecalendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/travel"
)

const (
	apiBase  = "https://www.googleapis.com/calendar/v3"
	tokenURL = "https://oauth2.googleapis.com/token"
)

// storedToken mirrors the persisted OAuth token file layout.
type storedToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// Client reads the user's Google calendars.
type Client struct {
	clientID     string
	clientSecret string
	tokenFile    string
	calendarID   string
	httpClient   *http.Client

	apiBase  string
	tokenURL string

	mu    sync.Mutex
	token storedToken
}

var _ travel.CalendarProvider = (*Client)(nil)

// NewClient creates a calendar client from config. The token file must
// already exist; a missing file means consent was never granted.
func NewClient(cfg config.Calendar) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenFile:    cfg.TokenFile,
		calendarID:   cfg.CalendarID,
		httpClient:   &http.Client{Timeout: timeout},
		apiBase:      apiBase,
		tokenURL:     tokenURL,
	}
	if c.calendarID == "" {
		c.calendarID = "primary"
	}

	data, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar token file: %w", err)
	}
	if err := json.Unmarshal(data, &c.token); err != nil {
		return nil, fmt.Errorf("parse calendar token file: %w", err)
	}
	return c, nil
}

// accessToken returns a valid access token, refreshing and re-persisting it
// when the stored one is expired or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.AccessToken != "" && time.Until(c.token.Expiry) > time.Minute {
		return c.token.AccessToken, nil
	}
	if c.token.RefreshToken == "" {
		return "", fmt.Errorf("calendar token expired and no refresh token available")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.token.RefreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("calendar auth error %d: %s", resp.StatusCode, string(body))
	}

	var refreshed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &refreshed); err != nil {
		return "", fmt.Errorf("parse refresh response: %w", err)
	}
	c.token.AccessToken = refreshed.AccessToken
	c.token.Expiry = time.Now().Add(time.Duration(refreshed.ExpiresIn) * time.Second)

	if data, err := json.Marshal(c.token); err == nil {
		_ = os.WriteFile(c.tokenFile, data, 0o600)
	}
	return c.token.AccessToken, nil
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := c.apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("calendar API error %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// ListCalendars returns the calendars the user can read.
func (c *Client) ListCalendars(ctx context.Context) ([]travel.CalendarInfo, error) {
	data, err := c.doGet(ctx, "/users/me/calendarList", nil)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	var parsed struct {
		Items []struct {
			ID      string `json:"id"`
			Summary string `json:"summary"`
			Primary bool   `json:"primary"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal calendar list: %w", err)
	}

	infos := make([]travel.CalendarInfo, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		infos = append(infos, travel.CalendarInfo{
			ID:      item.ID,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}
	return infos, nil
}

// Events returns events on the configured calendar between start and end,
// given as YYYY-MM-DD dates. All-day events carry a date instead of a
// dateTime; both normalize to the event record's start/end strings.
func (c *Client) Events(ctx context.Context, start, end string) ([]itinerary.CalendarEvent, error) {
	timeMin, err := dayBound(start, false)
	if err != nil {
		return nil, fmt.Errorf("events: bad start date %q: %w", start, err)
	}
	timeMax, err := dayBound(end, true)
	if err != nil {
		return nil, fmt.Errorf("events: bad end date %q: %w", end, err)
	}

	query := url.Values{}
	query.Set("timeMin", timeMin)
	query.Set("timeMax", timeMax)
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	data, err := c.doGet(ctx, "/calendars/"+url.PathEscape(c.calendarID)+"/events", query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var parsed struct {
		Items []struct {
			Summary  string `json:"summary"`
			Location string `json:"location"`
			Start    struct {
				DateTime string `json:"dateTime"`
				Date     string `json:"date"`
			} `json:"start"`
			End struct {
				DateTime string `json:"dateTime"`
				Date     string `json:"date"`
			} `json:"end"`
		} `json:"items"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}

	events := make([]itinerary.CalendarEvent, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		ev := itinerary.CalendarEvent{
			Summary:  item.Summary,
			Location: item.Location,
			Start:    item.Start.DateTime,
			End:      item.End.DateTime,
		}
		if ev.Start == "" {
			ev.Start = item.Start.Date
		}
		if ev.End == "" {
			ev.End = item.End.Date
		}
		events = append(events, ev)
	}
	return events, nil
}

// dayBound converts a YYYY-MM-DD date to an RFC 3339 instant at the start
// (or end) of that day in UTC.
func dayBound(date string, endOfDay bool) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", err
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Second)
	}
	return d.UTC().Format(time.RFC3339), nil
}
