// Package leagueclock resolves "now" and "today" in a league's operating
// timezone. Every same-day / cross-day decision goes through here.
package leagueclock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock pairs a time source with the single fixed civil timezone the league
// operates in.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock struct {
	clock clockwork.Clock
	loc   *time.Location
}

// New creates a Clock. A nil location means UTC.
func New(clock clockwork.Clock, loc *time.Location) *Clock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{clock: clock, loc: loc}
}

// Now returns the current instant expressed in the league timezone.
func (c *Clock) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// Today returns the current civil date in the league timezone.
func (c *Clock) Today() Date {
	return DateOf(c.clock.Now(), c.loc)
}

// DateOf returns the civil date of t in the league timezone.
func (c *Clock) DateOf(t time.Time) Date {
	return DateOf(t, c.loc)
}

// SameDay reports whether a and b fall on the same civil day in the league
// timezone.
func (c *Clock) SameDay(a, b time.Time) bool {
	return c.DateOf(a) == c.DateOf(b)
}

// Location returns the league timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

var offsetPattern = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// LoadLocation resolves an IANA zone name ("Asia/Seoul") or a fixed offset
// ("UTC+09:00", "+0900", "-05").
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC, nil
	}

	if m := offsetPattern.FindStringSubmatch(name); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("invalid utc offset %q", name)
		}
		seconds := hours*3600 + minutes*60
		if m[1] == "-" {
			seconds = -seconds
		}
		return time.FixedZone(name, seconds), nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", name, err)
	}
	return loc, nil
}
