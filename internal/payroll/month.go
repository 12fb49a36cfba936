package payroll

import (
	"regexp"
	"strconv"
	"time"
)

var (
	yearMonthPattern = regexp.MustCompile(`(\d{4})[/-](\d{1,2})`)
	bareMonthPattern = regexp.MustCompile(`(\d{1,2})月`)
	// Longest alternative first so 十一月 and 十二月 are not read as 一月
	// and 二月.
	zhMonthPattern = regexp.MustCompile(`(十[一二]?|[一二三四五六七八九])月`)
)

var zhMonths = map[string]time.Month{
	"一": time.January, "二": time.February, "三": time.March,
	"四": time.April, "五": time.May, "六": time.June,
	"七": time.July, "八": time.August, "九": time.September,
	"十": time.October, "十一": time.November, "十二": time.December,
}

// ResolveMonth picks the statement month out of the request text. An
// explicit "YYYY-MM" or "YYYY/M" token wins; a bare "<n>月" or "<numeral>月"
// token keeps the current year. Without any token the previous calendar
// month is used, since pay for the in-progress month is not final yet.
func ResolveMonth(text string, now time.Time) (year int, month time.Month) {
	if m := yearMonthPattern.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		if mo >= 1 && mo <= 12 {
			return y, time.Month(mo)
		}
	}

	if m := bareMonthPattern.FindStringSubmatch(text); m != nil {
		mo, _ := strconv.Atoi(m[1])
		if mo >= 1 && mo <= 12 {
			return now.Year(), time.Month(mo)
		}
	}

	if m := zhMonthPattern.FindStringSubmatch(text); m != nil {
		if mo, ok := zhMonths[m[1]]; ok {
			return now.Year(), mo
		}
	}

	year, month = now.Year(), now.Month()
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// DaysInMonth returns the month's actual calendar length.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
