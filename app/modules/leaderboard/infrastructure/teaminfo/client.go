// Package teaminfo looks up team metadata from The Blue Alliance.
package teaminfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://www.thebluealliance.com/api/v3"
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = time.Hour
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrNoAPIKey     = errors.New("no TBA API key configured")
)

// Team is the subset of TBA team data shown next to scouting stats.
type Team struct {
	TeamNumber int    `json:"team_number"`
	Key        string `json:"key"`
	Nickname   string `json:"nickname"`
	Name       string `json:"name,omitempty"`
	City       string `json:"city"`
	StateProv  string `json:"state_prov"`
	Country    string `json:"country"`
}

// Lookup resolves a team number to its metadata.
type Lookup interface {
	GetTeam(ctx context.Context, teamNumber int) (*Team, error)
}

// Config configures a Client.
type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
	// Limit and Burst bound outgoing requests.
	Limit rate.Limit
	Burst int
}

type cached struct {
	team    Team
	fetched time.Time
}

// Client is a rate-limited, caching TBA client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	ttl     time.Duration
	limiter *rate.Limiter
	now     func() time.Time

	mu    sync.Mutex
	cache map[int]cached
}

// NewClient creates a Client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Limit == 0 {
		cfg.Limit = rate.Every(100 * time.Millisecond)
	}
	if cfg.Burst == 0 {
		cfg.Burst = 5
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		ttl:     cfg.CacheTTL,
		limiter: rate.NewLimiter(cfg.Limit, cfg.Burst),
		now:     time.Now,
		cache:   make(map[int]cached),
	}
}

var _ Lookup = (*Client)(nil)

// GetTeam returns the team, serving from cache while the entry is fresh.
func (c *Client) GetTeam(ctx context.Context, teamNumber int) (*Team, error) {
	if team, ok := c.fromCache(teamNumber); ok {
		return &team, nil
	}
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("teaminfo.GetTeam: %w", err)
	}

	url := fmt.Sprintf("%s/team/frc%d", c.baseURL, teamNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("teaminfo.GetTeam: %w", err)
	}
	req.Header.Set("X-TBA-Auth-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("teaminfo.GetTeam: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("teaminfo.GetTeam: frc%d: %w", teamNumber, ErrTeamNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("teaminfo.GetTeam: unexpected status %d", resp.StatusCode)
	}

	var team Team
	if err := json.NewDecoder(resp.Body).Decode(&team); err != nil {
		return nil, fmt.Errorf("teaminfo.GetTeam: decode: %w", err)
	}

	c.mu.Lock()
	c.cache[teamNumber] = cached{team: team, fetched: c.now()}
	c.mu.Unlock()

	return &team, nil
}

func (c *Client) fromCache(teamNumber int) (Team, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[teamNumber]
	if !ok || c.now().Sub(entry.fetched) > c.ttl {
		return Team{}, false
	}
	return entry.team, true
}
