package journal

import (
	"time"

	"github.com/pkg/errors"
)

// DayLayout is the canonical calendar-day form used by the streak
// tracker and the analytics aggregator. Both must normalize through
// DayOf so they never disagree on day boundaries.
const DayLayout = "2006-01-02"

// DayOf normalizes a unix timestamp to its calendar day in loc.
func DayOf(ts int64, loc *time.Location) string {
	return time.Unix(ts, 0).In(loc).Format(DayLayout)
}

// ParseDay parses a canonical calendar day.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid day %q", day)
	}
	return t, nil
}

// DayGap returns the signed number of calendar days from prev to next.
// Zero means the same day, one means consecutive days, negative means
// next is before prev (a backdated entry).
func DayGap(prev, next string) (int, error) {
	p, err := ParseDay(prev)
	if err != nil {
		return 0, err
	}
	n, err := ParseDay(next)
	if err != nil {
		return 0, err
	}
	return int(n.Sub(p).Hours() / 24), nil
}
