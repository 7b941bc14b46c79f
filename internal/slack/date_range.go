package slack

import (
	"time"

	"slackdigest/internal/commontypes"
)

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time // midnight of the first day
	End   time.Time // midnight of the last day
}

// ResolveRange parses start and end as YYYY-MM-DD in loc. An empty or
// unparseable start becomes the first day of now's month; an empty or
// unparseable end becomes the last day of now's month.
func ResolveRange(start, end string, now time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	firstOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	r := DateRange{Start: firstOfMonth, End: lastOfMonth}
	if t, ok := parseDate(start, loc); ok {
		r.Start = t
	}
	if t, ok := parseDate(end, loc); ok {
		r.End = t
	}
	return r
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(commontypes.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Oldest is the Unix second at which the first day begins.
func (r DateRange) Oldest() int64 { return r.Start.Unix() }

// Latest is the last Unix second of the final day.
func (r DateRange) Latest() int64 { return r.End.AddDate(0, 0, 1).Unix() - 1 }

func (r DateRange) String() string {
	return r.Start.Format(commontypes.DateLayout) + ".." + r.End.Format(commontypes.DateLayout)
}
