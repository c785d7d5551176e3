package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"carenest/models"
	"carenest/utils"
)

const dateLayout = "2006-01-02"

// clock is a wall-clock time of day.
type clock struct {
	hour   int
	minute int
}

func (c clock) minutes() int {
	return c.hour*60 + c.minute
}

// parseClock accepts 24-hour ("14", "14:30") and 12-hour ("2 PM", "2:30pm")
// times of day.
func parseClock(raw string) (clock, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return clock{}, fmt.Errorf("empty time")
	}

	meridian := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridian = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	hourPart, minutePart := s, "0"
	if i := strings.Index(s, ":"); i >= 0 {
		hourPart, minutePart = s[:i], s[i+1:]
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return clock{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 || len(minutePart) > 2 {
		return clock{}, fmt.Errorf("invalid minute in %q", raw)
	}

	switch meridian {
	case "":
		if hour < 0 || hour > 23 {
			return clock{}, fmt.Errorf("hour out of range in %q", raw)
		}
	default:
		if hour < 1 || hour > 12 {
			return clock{}, fmt.Errorf("hour out of range in %q", raw)
		}
		if hour == 12 {
			hour = 0
		}
		if meridian == "PM" {
			hour += 12
		}
	}
	return clock{hour: hour, minute: minute}, nil
}

// parseDate parses a YYYY-MM-DD booking date in loc.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(raw), loc)
}

// startInstant composes the booking date and start time in loc.
func startInstant(b *models.Booking, loc *time.Location) (time.Time, error) {
	day, err := parseDate(b.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	start, err := parseClock(b.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), start.hour, start.minute, 0, 0, loc), nil
}

// hourSpan is a booking window normalized to whole hours.
type hourSpan struct {
	start int
	end   int
}

func spanOf(startTime, endTime string) (hourSpan, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return hourSpan{}, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return hourSpan{}, err
	}
	return newHourSpan(start, end), nil
}

// newHourSpan widens a window to the whole hours it touches: the start hour is
// truncated and a partial end hour counts in full, so a window never shrinks
// to an empty span.
func newHourSpan(start, end clock) hourSpan {
	endHour := end.hour
	if end.minute > 0 {
		endHour++
	}
	return hourSpan{start: start.hour, end: endHour}
}

// overlaps compares whole hours only. Windows that merely share an hour are
// reported as overlapping even when their minutes do not intersect.
func (a hourSpan) overlaps(b hourSpan) bool {
	return a.start < b.end && a.end > b.start
}

// overlapCheck rejects a new window that intersects any blocking booking.
func overlapCheck(span hourSpan) func(existing []models.Booking) error {
	return func(existing []models.Booking) error {
		for i := range existing {
			other, err := spanOf(existing[i].StartTime, existing[i].EndTime)
			if err != nil {
				continue
			}
			if span.overlaps(other) {
				return utils.NewConflictError(fmt.Sprintf(
					"provider already has a booking from %s to %s on %s",
					existing[i].StartTime, existing[i].EndTime, existing[i].Date))
			}
		}
		return nil
	}
}
