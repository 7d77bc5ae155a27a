package briefing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	standardDateRe = regexp.MustCompile(`(20\d{2})[./-](\d{1,2})[./-](\d{1,2})`)
	cjkDateRe      = regexp.MustCompile(`(20\d{2})年\s*(\d{1,2})月\s*(\d{1,2})[日號号]?`)
	monthDayRe     = regexp.MustCompile(`(\d{1,2})月\s*(\d{1,2})日`)
	compactDateRe  = regexp.MustCompile(`\d{8}`)
	clockRe        = regexp.MustCompile(`(\d{1,2})[:：](\d{2})`)
	fullInstallRe  = regexp.MustCompile(`(20\d{2})[./年-]\s*(\d{1,2})[./月-]\s*(\d{1,2})(?:[日号]\s*)?(?:(\d{1,2}):(\d{2}))?`)
	mdInstallRe    = regexp.MustCompile(`(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
)

// ParseDate reads a calendar date out of free text. Recognized shapes,
// in order: ISO-like (2024-01-05, 2024.1.5), 2024年1月5日, bare 1月5日
// (year taken from now), and compact 20240105.
func ParseDate(value string, now time.Time) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	if m := standardDateRe.FindStringSubmatch(text); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := cjkDateRe.FindStringSubmatch(text); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		return makeDate(strconv.Itoa(now.Year()), m[1], m[2])
	}
	if m := compactDateRe.FindString(text); m != "" {
		return makeDate(m[0:4], m[4:6], m[6:8])
	}
	return time.Time{}, false
}

// ParseInstallTime reads an installation timestamp. Unparseable text is
// kept verbatim in Display with an empty ISO form.
func ParseInstallTime(value string, now time.Time) *InstallTime {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil
	}
	if m := fullInstallRe.FindStringSubmatch(text); m != nil {
		ts, ok := makeTimestamp(m[1], m[2], m[3], m[4], m[5])
		if ok {
			return &InstallTime{
				Display: ts.Format("2006-01-02 15:04"),
				ISO:     ts.Format("2006-01-02T15:04:05"),
			}
		}
	}
	if m := mdInstallRe.FindStringSubmatch(text); m != nil {
		hour, minute := "", ""
		if tm := clockRe.FindStringSubmatch(text); tm != nil {
			hour, minute = tm[1], tm[2]
		}
		ts, ok := makeTimestamp(strconv.Itoa(now.Year()), m[1], m[2], hour, minute)
		if ok {
			return &InstallTime{
				Display: ts.Format("2006-01-02 15:04"),
				ISO:     ts.Format("2006-01-02T15:04:05"),
			}
		}
	}
	return &InstallTime{Display: text}
}

// AddYears advances a date by whole years, clamping Feb 29 to Feb 28
// when the target year is not a leap year.
func AddYears(base time.Time, years int) time.Time {
	year := base.Year() + years
	month := base.Month()
	day := base.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, base.Location())
}

// AddMonths advances a date by whole months, clamping the day of month
// to the length of the target month.
func AddMonths(base time.Time, months int) time.Time {
	first := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, base.Location()).AddDate(0, months, 0)
	day := base.Day()
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, base.Location())
}

// FormatDate renders a date as YYYY-MM-DD; the zero time renders as "".
func FormatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format("2006-01-02")
}

func makeDate(year, month, day string) (time.Time, bool) {
	return makeTimestamp(year, month, day, "", "")
}

func makeTimestamp(year, month, day, hour, minute string) (time.Time, bool) {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	h, min := 0, 0
	if hour != "" {
		h, _ = strconv.Atoi(hour)
	}
	if minute != "" {
		min, _ = strconv.Atoi(minute)
	}
	if m < 1 || m > 12 || d < 1 || d > daysInMonth(y, time.Month(m)) || h > 23 || min > 59 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, h, min, 0, 0, time.UTC), true
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}
