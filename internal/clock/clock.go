package clock

import (
	"log/slog"
	"time"
)

// DefaultZone is the zone entries are dated in unless configured otherwise.
const DefaultZone = "Europe/Zagreb"

// Clock reports the current time in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New returns a Clock for the named zone. If the zone database has no entry
// for it, the system local zone is used instead.
func New(zone string, logger *slog.Logger) *Clock {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		if logger != nil {
			logger.Warn("time zone unavailable, using local time", "zone", zone, "error", err)
		}
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) *Clock {
	return &Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Now returns the current time in the clock's location.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar day as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.Now().Format(time.DateOnly)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}
