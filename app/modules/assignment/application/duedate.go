package assignmentservice

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	errDueDateUnrecognized = errors.New("could not recognize due date")
	errDueDateInPast       = errors.New("due date must be in the future")
	errUnknownTimezone     = errors.New("unknown timezone")

	compactClock = regexp.MustCompile(`(\d{1,2})(\d{2})(am|pm)`)
)

// DueDateParser turns RFC3339 timestamps or phrases like "next friday at 5pm"
// into UTC times.
type DueDateParser struct {
	TimezoneMap map[string]string
	parser      *when.Parser
}

// NewDueDateParser creates a parser with the US timezone abbreviations.
func NewDueDateParser() *DueDateParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &DueDateParser{
		TimezoneMap: map[string]string{
			"UTC": "UTC",
			"PST": "America/Los_Angeles",
			"PDT": "America/Los_Angeles",
			"MST": "America/Denver",
			"MDT": "America/Denver",
			"CST": "America/Chicago",
			"CDT": "America/Chicago",
			"EST": "America/New_York",
			"EDT": "America/New_York",
		},
		parser: w,
	}
}

func (p *DueDateParser) location(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	name, ok := p.TimezoneMap[strings.ToUpper(timezone)]
	if !ok {
		name = timezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errUnknownTimezone, timezone)
	}
	return loc, nil
}

// Parse interprets input relative to now in timezone. The result is in UTC and must
// lie in the future.
func (p *DueDateParser) Parse(input, timezone string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		if !t.After(now) {
			return time.Time{}, errDueDateInPast
		}
		return t.UTC(), nil
	}

	loc, err := p.location(timezone)
	if err != nil {
		return time.Time{}, err
	}

	normalized := strings.ToLower(input)
	normalized = compactClock.ReplaceAllString(normalized, "$1:$2 $3")

	r, err := p.parser.Parse(normalized, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errDueDateUnrecognized, err)
	}
	if r == nil {
		return time.Time{}, errDueDateUnrecognized
	}

	parsed := r.Time.In(loc).Truncate(time.Minute)
	if !parsed.After(now.In(loc).Truncate(time.Minute)) {
		return time.Time{}, errDueDateInPast
	}
	return parsed.UTC(), nil
}
