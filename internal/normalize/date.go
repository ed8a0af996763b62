package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. The first entries cover what Russian
// documents write by hand, the rest cover renderings of typed date cells.
var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2006-01-02",
	"02/01/2006",
	"01-02-06",
	"02-01-2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04:05",
	time.RFC3339,
}

var genitiveMonths = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

var (
	wordDateRegex = regexp.MustCompile(`^«?(\d{1,2})»?\s+(\p{L}+)\s+(\d{4})`)
	serialRegex   = regexp.MustCompile(`^\d{5}(\.\d+)?$`)
)

// Date parses a document date. The boolean is false when nothing matched.
func Date(s string) (time.Time, bool) {
	s = Value(s, false)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if m := wordDateRegex.FindStringSubmatch(Header(s)); m != nil {
		if month, ok := genitiveMonths[m[2]]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			if t.Day() == day {
				return t, true
			}
		}
	}

	if serialRegex.MatchString(s) {
		serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.Truncate(24 * time.Hour), true
			}
		}
	}

	return time.Time{}, false
}
