// Package calendar knows which days the US equity market (NYSE) trades.
package calendar

import "time"

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LastNTradingDays returns the last n trading days up to and including
// from, most recent first.
func LastNTradingDays(n int, from time.Time) []time.Time {
	out := make([]time.Time, 0, n)
	d := Day(from)

	for len(out) < n {
		if IsTradingDay(d) {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	return out
}

// SpanStart returns the first day of a range ending at from that contains
// n trading days plus the one before them, so that n daily returns can be
// computed from the bars in the range.
func SpanStart(n int, from time.Time) time.Time {
	if n < 1 {
		n = 1
	}
	days := LastNTradingDays(n+1, from)
	return days[len(days)-1]
}

// IsTradingDay reports whether d is a weekday that is not an NYSE holiday.
func IsTradingDay(d time.Time) bool {
	d = Day(d)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := holidays(d.Year())[d]
	return !holiday
}

// holidays lists the full-day closures of a year as observed.
func holidays(year int) map[time.Time]struct{} {
	out := make(map[time.Time]struct{}, 10)
	add := func(t time.Time) { out[t] = struct{}{} }

	// New Year's Day falling on a Saturday is not observed on the Friday.
	if ny := date(year, time.January, 1); ny.Weekday() == time.Sunday {
		add(ny.AddDate(0, 0, 1))
	} else {
		add(ny)
	}
	add(nthWeekday(year, time.January, time.Monday, 3))  // Martin Luther King Jr. Day
	add(nthWeekday(year, time.February, time.Monday, 3)) // Washington's Birthday
	add(easterSunday(year).AddDate(0, 0, -2))            // Good Friday
	add(lastWeekday(year, time.May, time.Monday))        // Memorial Day
	if year >= 2022 {
		add(observed(date(year, time.June, 19))) // Juneteenth
	}
	add(observed(date(year, time.July, 4)))
	add(nthWeekday(year, time.September, time.Monday, 1))  // Labor Day
	add(nthWeekday(year, time.November, time.Thursday, 4)) // Thanksgiving
	add(observed(date(year, time.December, 25)))
	return out
}

func date(year int, m time.Month, d int) time.Time {
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

// observed moves a Saturday holiday to Friday and a Sunday one to Monday.
func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

func nthWeekday(year int, m time.Month, wd time.Weekday, n int) time.Time {
	t := date(year, m, 1)
	offset := (int(wd) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, offset+7*(n-1))
}

func lastWeekday(year int, m time.Month, wd time.Weekday) time.Time {
	t := date(year, m+1, 1).AddDate(0, 0, -1)
	offset := (int(t.Weekday()) - int(wd) + 7) % 7
	return t.AddDate(0, 0, -offset)
}

// easterSunday returns the date of Easter Sunday for a given year
// (Meeus/Jones/Butcher algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return date(year, time.Month(month), day)
}
