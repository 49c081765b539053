package interpret

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// English is a small rule-based Interpreter. It understands:
//
//	in 10 minutes, in an hour, in two days
//	today, tomorrow, the day after tomorrow, (next) monday, may 6(th), 2024-05-06
//	at 8, 8:30, 20:30, 8pm, 8:30 p.m., noon, midnight, morning, evening, tonight
type English struct{}

var _ Interpreter = English{}

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm|a\.m|p\.m)?$`)

var (
	numberWords = map[string]int{
		"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
		"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	}
	tensWords = map[string]int{
		"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
		"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	}
	units = map[string]time.Duration{
		"second": time.Second, "seconds": time.Second, "sec": time.Second, "secs": time.Second,
		"minute": time.Minute, "minutes": time.Minute, "min": time.Minute, "mins": time.Minute,
		"hour": time.Hour, "hours": time.Hour, "hr": time.Hour, "hrs": time.Hour,
		"day": 24 * time.Hour, "days": 24 * time.Hour,
		"week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
	}
	weekdays = map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
		"saturday": time.Saturday,
	}
	months = map[string]time.Month{
		"january": time.January, "jan": time.January, "february": time.February, "feb": time.February,
		"march": time.March, "mar": time.March, "april": time.April, "apr": time.April,
		"may": time.May, "june": time.June, "jun": time.June, "july": time.July, "jul": time.July,
		"august": time.August, "aug": time.August, "september": time.September, "sep": time.September,
		"sept": time.September, "october": time.October, "oct": time.October,
		"november": time.November, "nov": time.November, "december": time.December, "dec": time.December,
	}
	partsOfDay = map[string]Clock{
		"noon":      {Hour: 12},
		"midday":    {Hour: 12},
		"midnight":  {Hour: 0},
		"morning":   {Hour: 8},
		"afternoon": {Hour: 15},
		"evening":   {Hour: 19},
		"tonight":   {Hour: 20},
	}
	prepositions = map[string]bool{
		"at": true, "on": true, "in": true, "by": true, "next": true, "this": true, "the": true,
	}
)

type token struct {
	text  string
	lower string
}

type tokens struct {
	items []token
	used  []bool
}

func tokenize(text string) *tokens {
	fields := strings.Fields(text)
	t := &tokens{items: make([]token, 0, len(fields)), used: make([]bool, 0, len(fields))}
	for _, f := range fields {
		lower := strings.Trim(strings.ToLower(f), ",.!?;\"")
		if lower == "" {
			continue
		}
		t.items = append(t.items, token{text: f, lower: lower})
		t.used = append(t.used, false)
	}
	return t
}

func (t *tokens) len() int { return len(t.items) }

func (t *tokens) word(i int) string {
	if i < 0 || i >= len(t.items) || t.used[i] {
		return ""
	}
	return t.items[i].lower
}

func (t *tokens) claim(from, to int) {
	for i := from; i < to && i < len(t.used); i++ {
		t.used[i] = true
	}
}

// claimPrepositions marks the prepositions directly in front of i as used.
func (t *tokens) claimPrepositions(i int) {
	for j := i - 1; j >= 0; j-- {
		if !prepositions[t.word(j)] {
			return
		}
		t.used[j] = true
	}
}

func (t *tokens) remainder() string {
	out := make([]string, 0, len(t.items))
	for i, tok := range t.items {
		if !t.used[i] {
			out = append(out, tok.text)
		}
	}
	return strings.Join(out, " ")
}

func (English) ExtractDateTime(text string, now time.Time, _ string, defaultTime *Clock) (time.Time, string, bool) {
	toks := tokenize(text)

	if d, ok := toks.relative(); ok {
		return now.Add(d).Truncate(time.Second), toks.remainder(), true
	}

	date, hasDate := toks.date(now)
	clock, hasClock := toks.clock()
	if !hasDate && !hasClock {
		return time.Time{}, text, false
	}
	if !hasClock {
		clock = Clock{}
		if defaultTime != nil {
			clock = *defaultTime
		}
	}
	if !hasDate {
		date = now
	}
	y, m, d := date.Date()
	at := time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, now.Location())
	if !hasDate && !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, toks.remainder(), true
}

func (English) ExtractDuration(text, _ string) (time.Duration, string, bool) {
	toks := tokenize(text)
	var total time.Duration
	found := false
	for i := 0; i < toks.len(); i++ {
		d, n, ok := toks.amount(i)
		if !ok {
			continue
		}
		toks.claim(i, i+n)
		if toks.word(i-1) == "for" {
			toks.used[i-1] = true
		}
		total += d
		found = true
		i += n - 1
	}
	if !found {
		return 0, text, false
	}
	return total, toks.remainder(), true
}

func (English) ExtractNumber(text, _ string) (float64, bool) {
	toks := tokenize(text)
	for i := 0; i < toks.len(); i++ {
		if v, _, ok := toks.number(i); ok {
			return v, true
		}
	}
	return 0, false
}

// relative matches "in <amount> <unit>".
func (t *tokens) relative() (time.Duration, bool) {
	for i := 0; i+1 < t.len(); i++ {
		if t.word(i) != "in" {
			continue
		}
		d, n, ok := t.amount(i + 1)
		if !ok {
			continue
		}
		t.claim(i, i+1+n)
		return d, true
	}
	return 0, false
}

// amount matches "<number> <unit>", "a/an <unit>" and "half an hour" at i.
func (t *tokens) amount(i int) (time.Duration, int, bool) {
	w := t.word(i)
	if w == "half" && (t.word(i+1) == "an" || t.word(i+1) == "a") {
		if u, ok := units[t.word(i+2)]; ok {
			return u / 2, 3, true
		}
	}
	if w == "a" || w == "an" {
		if u, ok := units[t.word(i+1)]; ok {
			return u, 2, true
		}
		return 0, 0, false
	}
	v, n, ok := t.number(i)
	if !ok {
		return 0, 0, false
	}
	u, ok := units[t.word(i+n)]
	if !ok {
		return 0, 0, false
	}
	return time.Duration(v * float64(u)), n + 1, true
}

// number matches digits, "twenty five", "twenty-five" or a single number word.
func (t *tokens) number(i int) (float64, int, bool) {
	w := t.word(i)
	if w == "" {
		return 0, 0, false
	}
	if w[0] >= '0' && w[0] <= '9' {
		if v, err := strconv.ParseFloat(w, 64); err == nil {
			return v, 1, true
		}
	}
	if v, ok := numberWords[w]; ok {
		return float64(v), 1, true
	}
	if tens, rest, ok := strings.Cut(w, "-"); ok {
		if tv, ok := tensWords[tens]; ok {
			if uv, ok := numberWords[rest]; ok && uv > 0 && uv < 10 {
				return float64(tv + uv), 1, true
			}
		}
	}
	if tv, ok := tensWords[w]; ok {
		if uv, ok := numberWords[t.word(i+1)]; ok && uv > 0 && uv < 10 {
			return float64(tv + uv), 2, true
		}
		return float64(tv), 1, true
	}
	return 0, 0, false
}

func (t *tokens) date(now time.Time) (time.Time, bool) {
	for i := 0; i < t.len(); i++ {
		w := t.word(i)
		switch {
		case w == "today":
			t.claim(i, i+1)
			t.claimPrepositions(i)
			return now, true
		case w == "tonight":
			// left for clock() to claim as 20:00
			return now, true
		case w == "day" && t.word(i+1) == "after" && t.word(i+2) == "tomorrow":
			t.claim(i, i+3)
			t.claimPrepositions(i)
			return now.AddDate(0, 0, 2), true
		case w == "tomorrow":
			t.claim(i, i+1)
			t.claimPrepositions(i)
			return now.AddDate(0, 0, 1), true
		}
		if wd, ok := weekdays[w]; ok {
			ahead := (int(wd) - int(now.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			t.claim(i, i+1)
			t.claimPrepositions(i)
			return now.AddDate(0, 0, ahead), true
		}
		if d, err := time.ParseInLocation("2006-01-02", w, now.Location()); err == nil {
			t.claim(i, i+1)
			t.claimPrepositions(i)
			return d, true
		}
		if m, ok := months[w]; ok {
			if day, ok := dayOfMonth(t.word(i + 1)); ok {
				t.claim(i, i+2)
				t.claimPrepositions(i)
				return nextDate(now, m, day), true
			}
		}
		if day, ok := dayOfMonth(w); ok && strings.IndexFunc(w, isLetter) > 0 {
			next := i + 1
			if t.word(next) == "of" {
				next++
			}
			if m, ok := months[t.word(next)]; ok {
				t.claim(i, next+1)
				t.claimPrepositions(i)
				return nextDate(now, m, day), true
			}
		}
	}
	return time.Time{}, false
}

func (t *tokens) clock() (Clock, bool) {
	for i := 0; i < t.len(); i++ {
		w := t.word(i)
		if c, ok := partsOfDay[w]; ok {
			t.claim(i, i+1)
			t.claimPrepositions(i)
			return c, true
		}
		m := clockPattern.FindStringSubmatch(w)
		if m == nil {
			continue
		}
		suffix := m[3]
		consumed := 1
		if suffix == "" {
			switch next := t.word(i + 1); next {
			case "am", "a.m", "pm", "p.m":
				suffix = next
				consumed = 2
			case "o'clock":
				consumed = 2
			}
		}
		if m[2] == "" && suffix == "" && consumed == 1 && t.word(i-1) != "at" {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		c, ok := toClock(hour, minute, suffix)
		if !ok {
			continue
		}
		t.claim(i, i+consumed)
		t.claimPrepositions(i)
		return c, true
	}
	return Clock{}, false
}

func toClock(hour, minute int, suffix string) (Clock, bool) {
	if minute < 0 || minute > 59 {
		return Clock{}, false
	}
	switch suffix {
	case "am", "a.m":
		if hour < 1 || hour > 12 {
			return Clock{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm", "p.m":
		if hour < 1 || hour > 12 {
			return Clock{}, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return Clock{}, false
		}
	}
	return Clock{Hour: hour, Minute: minute}, true
}

func dayOfMonth(w string) (int, bool) {
	w = strings.TrimRight(w, "stndrh")
	d, err := strconv.Atoi(w)
	if err != nil || d < 1 || d > 31 {
		return 0, false
	}
	return d, true
}

// nextDate is the first month/day on or after now's date.
func nextDate(now time.Time, m time.Month, day int) time.Time {
	y, nm, nd := now.Date()
	if m < nm || (m == nm && day < nd) {
		y++
	}
	return time.Date(y, m, day, 0, 0, 0, 0, now.Location())
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}
