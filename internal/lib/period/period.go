// Package period содержит арифметику расчетных периодов подписки.
// Даты подписки хранятся без времени, в UTC.
package period

import "time"

// Days: длина расчетного периода в днях.
const Days = 30

// DateLayout: формат дат подписки во внешнем API.
const DateLayout = "2006-01-02"

// Today возвращает календарную дату момента now (полночь UTC).
func Today(now time.Time) time.Time {
	return Date(now)
}

// Date отбрасывает время суток.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// End возвращает дату окончания периода, начавшегося в start.
func End(start time.Time) time.Time {
	return Date(start).AddDate(0, 0, Days)
}

// Parse разбирает дату в формате DateLayout.
func Parse(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
