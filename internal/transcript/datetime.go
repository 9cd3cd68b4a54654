package transcript

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type dateParts struct {
	year, month, day int
}

// parseDate reads a date token. The separator picks the field order: "."
// is day.month.year, "/" is month/day/year. A "."-separated US export is
// misread as day-first; there is no detection beyond the separator.
func parseDate(token string) (dateParts, bool) {
	sep := "."
	if strings.Contains(token, "/") {
		sep = "/"
	}
	fields := strings.FieldsFunc(token, func(r rune) bool { return r == '.' || r == '/' })
	if len(fields) != 3 {
		return dateParts{}, false
	}
	var n [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return dateParts{}, false
		}
		n[i] = v
	}

	d := dateParts{year: n[2]}
	if sep == "/" {
		d.month, d.day = n[0], n[1]
	} else {
		d.day, d.month = n[0], n[1]
	}
	if d.year < 100 {
		d.year += 2000
	}
	return d, true
}

type clock struct {
	hour, minute, second int
}

// parseClock reads H:MM:SS and applies the 12-hour marker, if any.
func (l Locale) parseClock(token, marker string) (clock, bool) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return clock{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return clock{}, false
		}
		n[i] = v
	}
	c := clock{hour: n[0], minute: n[1], second: n[2]}

	am, pm := l.meridiem(marker)
	switch {
	case pm && c.hour != 12:
		c.hour += 12
	case am && c.hour == 12:
		c.hour = 0
	}
	return c, true
}

func timestampOf(d dateParts, c clock) time.Time {
	return time.Date(d.year, time.Month(d.month), d.day, c.hour, c.minute, c.second, 0, time.Local)
}

// rawDateOf is the display form: the date token as written plus 24-hour
// minutes.
func rawDateOf(dateToken string, c clock) string {
	return fmt.Sprintf("%s %02d:%02d", dateToken, c.hour, c.minute)
}
