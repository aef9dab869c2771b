package authdomain

import (
	"context"
	"strconv"
	"time"
)

// Scout is the authenticated caller as seen by the rest of the system.
type Scout struct {
	ID         string
	Name       string
	TeamNumber int
	Role       Role
}

// Organization is the reporting team the scout belongs to. Scouts without a team
// number are their own organization.
func (s Scout) Organization() string {
	if s.TeamNumber > 0 {
		return strconv.Itoa(s.TeamNumber)
	}
	return s.ID
}

// IsAdmin reports whether the scout administers their team.
func (s Scout) IsAdmin() bool {
	return s.Role == RoleAdmin && s.TeamNumber > 0
}

// Claims represents the domain model for authentication claims.
type Claims struct {
	Scout
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

type scoutKey struct{}

// WithScout attaches the authenticated scout to ctx.
func WithScout(ctx context.Context, s Scout) context.Context {
	return context.WithValue(ctx, scoutKey{}, s)
}

// ScoutFromContext returns the scout attached by WithScout.
func ScoutFromContext(ctx context.Context) (Scout, bool) {
	s, ok := ctx.Value(scoutKey{}).(Scout)
	return s, ok
}
