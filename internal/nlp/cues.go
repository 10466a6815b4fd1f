// Package nlp guards and post-processes the natural-language event flow.
//
// The parsing itself happens on the backend. This package only decides
// whether text is worth sending (Check) and turns a parse result into an
// editable form (Preview).
package nlp

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptyText   = errors.New("text is empty")
	ErrNoCues      = errors.New("no date or time found in text")
	ErrNoStartTime = errors.New("could not find a start time")
)

// Cues lists the scheduling hints found in a text, grouped by kind.
type Cues struct {
	ClockTime   []string
	RelativeDay []string
	Weekday     []string
	PartOfDay   []string
	TimeUnit    []string
	Date        []string
}

// Any reports whether at least one cue was found.
func (c Cues) Any() bool {
	return len(c.ClockTime)+len(c.RelativeDay)+len(c.Weekday)+
		len(c.PartOfDay)+len(c.TimeUnit)+len(c.Date) > 0
}

// word wraps alternatives in Unicode-aware boundaries. regexp's \b only
// knows ASCII, which breaks on Vietnamese letters such as "ữ".
func word(alts ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(alts, "|") + `)(?:$|[^\p{L}\p{N}])`)
}

var (
	clockRe = word(
		`\d{1,2}:\d{2}(?:\s*(?:am|pm))?`,
		`\d{1,2}\s*(?:am|pm)`,
		`\d{1,2}\s*(?:h|g|giờ)\s*\d{0,2}`,
		`lúc\s+\d{1,2}(?::\d{2})?`,
	)
	relativeDayRe = word(
		`hôm\s+nay`, `hôm\s+qua`, `ngày\s+mai`, `ngày\s+kia`, `mai`, `mốt`,
		`tuần\s+(?:sau|này|tới)`, `tháng\s+(?:sau|này|tới)`,
		`today`, `tonight`, `tomorrow`, `yesterday`,
		`next\s+(?:week|month)`, `this\s+(?:week|weekend)`,
	)
	weekdayRe = word(
		`thứ\s*(?:[2-7]|hai|ba|tư|năm|sáu|bảy)`, `chủ\s+nhật`, `cn`, `t[2-7]`,
		`monday`, `tuesday`, `wednesday`, `thursday`, `friday`, `saturday`, `sunday`,
	)
	partOfDayRe = word(
		`sáng`, `trưa`, `chiều`, `tối`, `đêm`,
		`morning`, `noon`, `afternoon`, `evening`, `night`, `midnight`,
	)
	timeUnitRe = word(
		`phút`, `giờ`, `tiếng`, `ngày`, `tuần`, `tháng`,
		`minutes?`, `mins?`, `hours?`, `hrs?`, `days?`, `weeks?`, `months?`,
	)
	dateRe = word(
		`\d{4}-\d{1,2}-\d{1,2}`,
		`\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?`,
	)
)

// findAll returns every first-group match. Scanning resumes right after the
// group so a boundary character can be shared by neighbouring matches.
func findAll(re *regexp.Regexp, text string) []string {
	var out []string
	for start := 0; start < len(text); {
		loc := re.FindStringSubmatchIndex(text[start:])
		if loc == nil {
			break
		}
		out = append(out, text[start+loc[2]:start+loc[3]])
		start += loc[3]
	}
	return out
}

// Scan looks for scheduling cues in text after NFC normalisation, so
// decomposed diacritics typed by some input methods still match.
func Scan(text string) Cues {
	text = norm.NFC.String(text)
	return Cues{
		ClockTime:   findAll(clockRe, text),
		RelativeDay: findAll(relativeDayRe, text),
		Weekday:     findAll(weekdayRe, text),
		PartOfDay:   findAll(partOfDayRe, text),
		TimeUnit:    findAll(timeUnitRe, text),
		Date:        findAll(dateRe, text),
	}
}

// Check rejects blank text and text with no scheduling cue before any
// network call is made.
func Check(text string) (Cues, error) {
	if strings.TrimSpace(text) == "" {
		return Cues{}, ErrEmptyText
	}
	c := Scan(text)
	if !c.Any() {
		return c, ErrNoCues
	}
	return c, nil
}
