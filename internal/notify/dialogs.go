package notify

import (
	"bytes"
	"fmt"
	"text/template"
)

type DialogID string

const (
	DialogReminding             DialogID = "Reminding"
	DialogToCancelInstructions  DialogID = "ToCancelInstructions"
	DialogByTheWay              DialogID = "ByTheWay"
	DialogItIsNight             DialogID = "ItIsNight"
	DialogAreYouSure            DialogID = "AreYouSure"
	DialogNoDateTime            DialogID = "NoDateTime"
	DialogParticularTime        DialogID = "ParticularTime"
	DialogSpecifyTime           DialogID = "SpecifyTime"
	DialogUntimedAlreadyExists  DialogID = "UntimedEntryAlreadyExists"
	DialogSpecify               DialogID = "Specify"
	DialogSavingReminderDate    DialogID = "SavingReminderDate"
	DialogSavingUntimed         DialogID = "SavingUntimed"
	DialogConflictAtTime        DialogID = "ConflictAtTime"
	DialogAddAnyway             DialogID = "AddAnyway"
	DialogPreNotify             DialogID = "PreNotify"
	DialogPreNotifyMinutes      DialogID = "PreNotifyMinutes"
	DialogAboutWhat             DialogID = "AboutWhat"
	DialogNoRemindersForDate    DialogID = "NoRemindersForDate"
	DialogConfirmRemoveDay      DialogID = "ConfirmRemoveDay"
	DialogRemovedForDate        DialogID = "RemovedForDate"
	DialogClearEntryWhichList   DialogID = "ClearEntryWhichList"
	DialogMultipleEntries       DialogID = "RemoveReminderMultipleEntries"
	DialogReminderDeleted       DialogID = "ReminderDeleted"
	DialogNoActive              DialogID = "NoActive"
	DialogNothingToCancel       DialogID = "NothingToCancel"
	DialogNoUpcoming            DialogID = "NoUpcoming"
	DialogReminderAt            DialogID = "ReminderAt"
	DialogNextOtherDate         DialogID = "NextOtherDate"
	DialogUntimedReminder       DialogID = "UntimedReminder"
	DialogReminderCancelled     DialogID = "ReminderCancelled"
	DialogRemindingIn           DialogID = "RemindingIn"
	DialogClearAllWhichList     DialogID = "ClearAllWhichList"
	DialogClearedAll            DialogID = "ClearedAll"
	DialogClearedNothing        DialogID = "ClearedNothing"
)

var englishDialogs = map[DialogID]string{
	DialogReminding:            "Reminding: {{.reminder}}",
	DialogToCancelInstructions: "Say cancel to stop this reminder, or snooze to hear it again later.",
	DialogByTheWay:             "By the way, soon it is time for: {{.reminder}}",
	DialogItIsNight:            "That time is in the middle of the night.",
	DialogAreYouSure:           "Are you sure you want a reminder then?",
	DialogNoDateTime:           "I could not find a date or time in that.",
	DialogParticularTime:       "Is there a particular time you want to be reminded?",
	DialogSpecifyTime:          "When should I remind you?",
	DialogUntimedAlreadyExists: "{{.reminder}} is already on your list. Do you want to give the new one another name?",
	DialogSpecify:              "What should the new reminder be called?",
	DialogSavingReminderDate:   "Okay, I will remind you {{.date}} at {{.time}}.",
	DialogSavingUntimed:        "Okay, I put {{.reminder}} on your list.",
	DialogConflictAtTime:       "You already have {{.reminder}} at {{.time}}.",
	DialogAddAnyway:            "Do you want to add this reminder anyway?",
	DialogPreNotify:            "Do you want a heads up before the reminder?",
	DialogPreNotifyMinutes:     "How many minutes before?",
	DialogAboutWhat:            "What should I remind you about?",
	DialogNoRemindersForDate:   "You have no reminders {{.date}}.",
	DialogConfirmRemoveDay:     "Do you want to remove all reminders {{.date}}?",
	DialogRemovedForDate:       "Removed {{.count}} reminders {{.date}}.",
	DialogClearEntryWhichList:  "Is it a reminder with a time?",
	DialogMultipleEntries:      "There are several, on {{.reminder}}. Which date should I remove?",
	DialogReminderDeleted:      "Removed {{.reminder}}.",
	DialogNoActive:             "There are no active reminders.",
	DialogNothingToCancel:      "There is nothing to cancel.",
	DialogNoUpcoming:           "You have no upcoming reminders.",
	DialogReminderAt:           "{{.reminder}} at {{.time}}",
	DialogNextOtherDate:        "Your next reminder is {{.reminder}} {{.date}} at {{.time}}.",
	DialogUntimedReminder:      "On your list: {{.reminder}}.",
	DialogReminderCancelled:    "Reminder cancelled.",
	DialogRemindingIn:          "Okay, I will remind you again at {{.time}}.",
	DialogClearAllWhichList:    "Should I clear the reminders with a time? Say no to clear the list without times.",
	DialogClearedAll:           "All cleared.",
	DialogClearedNothing:       "Nothing was cleared.",
}

// Dialogs renders dialog templates. Missing keys render as empty strings.
type Dialogs struct {
	templates map[DialogID]*template.Template
}

func NewDialogs(sources map[DialogID]string) (*Dialogs, error) {
	d := &Dialogs{templates: make(map[DialogID]*template.Template, len(sources))}
	for id, src := range sources {
		tmpl, err := template.New(string(id)).Option("missingkey=zero").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse dialog %s: %w", id, err)
		}
		d.templates[id] = tmpl
	}
	return d, nil
}

// EnglishDialogs returns the built-in dialog set.
func EnglishDialogs() *Dialogs {
	d, err := NewDialogs(englishDialogs)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dialogs) Render(id DialogID, vars Vars) string {
	tmpl, ok := d.templates[id]
	if !ok {
		return string(id)
	}
	var buf bytes.Buffer
	data := map[string]string(vars)
	if data == nil {
		data = map[string]string{}
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return string(id)
	}
	return buf.String()
}
