package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/remindd/internal/interpret"
)

type Type string

const (
	TypeAddAt          Type = "add-at-time"
	TypeAddUnspecified Type = "add-unspecified"
	TypeAddTimeOnly    Type = "add-time-only"
	TypeDeleteForDay   Type = "delete-for-day"
	TypeDeleteByName   Type = "delete-by-name"
	TypeListForDay     Type = "list-for-day"
	TypeNextUpcoming   Type = "next-upcoming"
	TypeListUntimed    Type = "list-untimed"
	TypeCancelActive   Type = "cancel-active"
	TypeSnoozeActive   Type = "snooze-active"
	TypeClearAll       Type = "clear-all"
	TypeStop           Type = "stop"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Label string
	At    time.Time
}

type LabelArgs struct {
	Label string
}

type TimeArgs struct {
	At time.Time
}

type DayArgs struct {
	Day time.Time
}

// SnoozeArgs.For is zero when no duration was given.
type SnoozeArgs struct {
	For time.Duration
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Label  *LabelArgs
	Time   *TimeArgs
	Day    *DayArgs
	Snooze *SnoozeArgs
}

var (
	addPrefixes = []string{
		"remind me to", "remind me about", "remind me that", "remind me",
		"add a reminder to", "add a reminder for", "add a reminder", "add reminder to", "add reminder",
		"set a reminder to", "set a reminder for", "set a reminder", "set reminder",
		"create a reminder to", "create a reminder", "new reminder", "reminder to", "remind", "add",
	}
	deleteHeads = map[string]bool{"delete": true, "remove": true, "clear": true, "erase": true}
	listHeads   = map[string]bool{
		"list": true, "show": true, "what": true, "what's": true, "whats": true,
		"read": true, "tell": true, "do": true, "any": true, "get": true,
	}
	labelEdgeFillers = map[string]bool{
		"to": true, "about": true, "that": true, "for": true, "me": true,
		"at": true, "on": true, "in": true, "by": true,
	}
	reminderFillers = map[string]bool{
		"all": true, "my": true, "the": true, "reminders": true, "reminder": true,
		"for": true, "of": true, "a": true, "called": true, "named": true, "about": true, "entry": true,
	}
	untimedMarkers = []string{"untimed", "without a time", "without time", "on my list", "general", "unscheduled"}
)

// Parser turns an utterance into one of the reminder intents.
type Parser struct {
	interp      interpret.Interpreter
	locale      string
	defaultTime interpret.Clock
	now         func() time.Time
}

func NewParser(interp interpret.Interpreter, locale string, defaultTime interpret.Clock, now func() time.Time) *Parser {
	if interp == nil {
		interp = interpret.English{}
	}
	if now == nil {
		now = time.Now
	}
	return &Parser{interp: interp, locale: locale, defaultTime: defaultTime, now: now}
}

func (p *Parser) Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	text := strings.ToLower(strings.TrimRight(raw, "?!. "))
	if text == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	words := strings.Fields(text)
	head := words[0]
	rest := strings.Join(words[1:], " ")

	switch {
	case text == "stop":
		return Command{Type: TypeStop, Raw: input}, nil
	case head == "snooze":
		return p.parseSnooze(input, rest), nil
	case head == "cancel" || head == "dismiss":
		return Command{Type: TypeCancelActive, Raw: input}, nil
	case deleteHeads[head]:
		return p.parseDelete(input, rest)
	case isAddHead(text):
		return p.parseAdd(input, text)
	case listHeads[head] || head == "next" || strings.Contains(text, "reminder"):
		return p.parseList(input, text), nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func (p *Parser) parseSnooze(raw, rest string) Command {
	args := SnoozeArgs{}
	if d, _, ok := p.interp.ExtractDuration(rest, p.locale); ok {
		args.For = d
	}
	return Command{Type: TypeSnoozeActive, Raw: raw, Snooze: &args}
}

func (p *Parser) parseDelete(raw, rest string) (Command, error) {
	at, remainder, ok := p.interp.ExtractDateTime(rest, p.now(), p.locale, nil)
	if ok && trimWords(remainder, reminderFillers) == "" {
		return Command{Type: TypeDeleteForDay, Raw: raw, Day: &DayArgs{Day: at}}, nil
	}
	if hasWord(rest, "all") || trimWords(rest, reminderFillers) == "" {
		return Command{Type: TypeClearAll, Raw: raw}, nil
	}
	label := CleanLabel(trimWords(remainder, reminderFillers))
	return Command{Type: TypeDeleteByName, Raw: raw, Label: &LabelArgs{Label: label}}, nil
}

func (p *Parser) parseAdd(raw, text string) (Command, error) {
	body := trimAddPrefix(text)
	if at, remainder, ok := p.interp.ExtractDateTime(body, p.now(), p.locale, &p.defaultTime); ok {
		label := CleanLabel(remainder)
		if label == "" {
			return Command{Type: TypeAddTimeOnly, Raw: raw, Time: &TimeArgs{At: at}}, nil
		}
		return Command{Type: TypeAddAt, Raw: raw, Add: &AddArgs{Label: label, At: at}}, nil
	}
	label := CleanLabel(body)
	if label == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "a reminder needs something to remind about"}
	}
	return Command{Type: TypeAddUnspecified, Raw: raw, Label: &LabelArgs{Label: label}}, nil
}

func (p *Parser) parseList(raw, text string) Command {
	for _, marker := range untimedMarkers {
		if strings.Contains(text, marker) {
			return Command{Type: TypeListUntimed, Raw: raw}
		}
	}
	if hasWord(text, "next") || hasWord(text, "upcoming") {
		return Command{Type: TypeNextUpcoming, Raw: raw}
	}
	day := p.now()
	if at, _, ok := p.interp.ExtractDateTime(text, day, p.locale, nil); ok {
		day = at
	}
	return Command{Type: TypeListForDay, Raw: raw, Day: &DayArgs{Day: day}}
}

// CleanLabel strips filler words from both ends and speaks the label back
// to the user: "my" and "our" become "your".
func CleanLabel(s string) string {
	label := trimWords(s, labelEdgeFillers)
	if label == "" {
		return ""
	}
	label = (" " + label + " ")
	label = strings.ReplaceAll(label, " my ", " your ")
	label = strings.ReplaceAll(label, " our ", " your ")
	return strings.TrimSpace(label)
}

func isAddHead(text string) bool {
	for _, prefix := range addPrefixes {
		if text == prefix || strings.HasPrefix(text, prefix+" ") {
			return true
		}
	}
	return false
}

func trimAddPrefix(text string) string {
	for _, prefix := range addPrefixes {
		if text == prefix {
			return ""
		}
		if strings.HasPrefix(text, prefix+" ") {
			return strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return text
}

// trimWords drops words found in fillers from both ends of s.
func trimWords(s string, fillers map[string]bool) string {
	words := strings.Fields(s)
	for len(words) > 0 && fillers[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && fillers[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func hasWord(s, word string) bool {
	for _, w := range strings.Fields(s) {
		if w == word {
			return true
		}
	}
	return false
}
