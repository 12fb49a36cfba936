package leave

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	singleDatePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(\(.+\))?$`)
	embeddedPattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}(~\d{4}-\d{2}-\d{2})?`)
)

// DateEntry is one requested leave day. A trailing parenthetical annotation
// on a bare date ("2025-07-01(morning)") stays attached to that single day;
// range expansion never reproduces it.
type DateEntry struct {
	Day        string
	Annotation string
}

// ExtractDateExpr pulls the first date-or-range expression out of free
// text, or "" when none is embedded.
func ExtractDateExpr(text string) string {
	return embeddedPattern.FindString(text)
}

// ExpandDates turns a date expression into the ordered daily sequence.
// "A~B" expands to every calendar day from A to B inclusive; a bare date
// yields itself. Malformed or absent input yields an empty sequence.
func ExpandDates(expr string) []DateEntry {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	if strings.Contains(expr, "~") {
		parts := strings.SplitN(expr, "~", 2)
		start, err := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
		if err != nil {
			return nil
		}
		end, err := time.Parse(dateLayout, strings.TrimSpace(parts[1]))
		if err != nil {
			return nil
		}
		if end.Before(start) {
			return nil
		}

		var entries []DateEntry
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			entries = append(entries, DateEntry{Day: d.Format(dateLayout)})
		}
		return entries
	}

	m := singleDatePattern.FindStringSubmatch(expr)
	if m == nil {
		return nil
	}
	if _, err := time.Parse(dateLayout, m[1]); err != nil {
		return nil
	}
	return []DateEntry{{Day: m[1], Annotation: m[2]}}
}

// EntriesFromISO adapts a classifier-extracted date list, dropping
// anything that is not a well-formed ISO date.
func EntriesFromISO(dates []string) []DateEntry {
	var entries []DateEntry
	for _, d := range dates {
		for _, e := range ExpandDates(d) {
			entries = append(entries, e)
		}
	}
	return entries
}
