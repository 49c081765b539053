package notify

import (
	"strings"
	"time"
)

// NiceTime renders the wall-clock time of t, e.g. "8:05 AM".
func NiceTime(t time.Time) string {
	return t.Format("3:04 PM")
}

// NiceDate renders t's calendar date. The year is left out when it matches
// now's year.
func NiceDate(t, now time.Time) string {
	if t.Year() == now.Year() {
		return t.Format("Monday, January 2")
	}
	return t.Format("Monday, January 2, 2006")
}

// DateStr is NiceDate with "today" and "tomorrow" for the nearest days,
// ready to follow a verb ("... on Monday, May 6").
func DateStr(t, now time.Time) string {
	local := now.In(t.Location())
	y, m, d := t.Date()
	ty, tm, td := local.Date()
	if y == ty && m == tm && d == td {
		return "today"
	}
	ny, nm, nd := local.AddDate(0, 0, 1).Date()
	if y == ny && m == nm && d == nd {
		return "tomorrow"
	}
	return "on " + NiceDate(t, now)
}

// JoinList joins items as "a, b and c".
func JoinList(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " " + conj + " " + items[len(items)-1]
}
