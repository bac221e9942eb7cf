// Package models defines the records produced and consumed by the circlemap pipeline.
package models

import (
	"strconv"
	"strings"
)

// Message is a single parsed chat line (plus its continuation lines).
type Message struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Sender  string `json:"sender"`
	Text    string `json:"text"`
	IsMedia bool   `json:"isMedia"`
}

// Clock returns the 24-hour hour and minute of the message's time string.
// Accepts "14:05", "2:05 PM", "2:05:33 pm" and the narrow no-break space
// WhatsApp inserts before the AM/PM marker.
func (m Message) Clock() (hour, minute int, ok bool) {
	return ParseClock(m.Time)
}

// ParseClock parses a transcript time string into hour and minute.
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.ToLower(strings.TrimSpace(strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(s)))
	if s == "" {
		return 0, 0, false
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm", "a.m.", "p.m."} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix[:1]
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	mi, err := strconv.Atoi(parts[1])
	if err != nil || mi < 0 || mi > 59 {
		return 0, 0, false
	}

	switch meridiem {
	case "a":
		if h < 1 || h > 12 {
			return 0, 0, false
		}
		if h == 12 {
			h = 0
		}
	case "p":
		if h < 1 || h > 12 {
			return 0, 0, false
		}
		if h != 12 {
			h += 12
		}
	default:
		if h < 0 || h > 23 {
			return 0, 0, false
		}
	}
	return h, mi, true
}

// WordCount returns the number of whitespace separated words in the message text.
func (m Message) WordCount() int {
	return len(strings.Fields(m.Text))
}

// Member aggregates the messages of one sender string.
type Member struct {
	Name         string    `json:"name"`
	MessageCount int       `json:"messageCount"`
	FirstSeen    string    `json:"firstSeen"`
	LastSeen     string    `json:"lastSeen"`
	Messages     []Message `json:"messages"`
}

// FirstName returns the lowercase first word of the member name.
func FirstName(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// TranscriptStats summarizes a parsed transcript.
type TranscriptStats struct {
	TotalMessages int    `json:"totalMessages"`
	TotalMembers  int    `json:"totalMembers"`
	FirstDate     string `json:"firstDate"`
	LastDate      string `json:"lastDate"`
}

// Transcript is the parser output: messages in transcript order, members in
// order of first appearance.
type Transcript struct {
	Messages []Message       `json:"messages"`
	Members  []Member        `json:"members"`
	Stats    TranscriptStats `json:"stats"`
}

// Member returns the member with the given name.
func (t *Transcript) Member(name string) (*Member, bool) {
	for i := range t.Members {
		if t.Members[i].Name == name {
			return &t.Members[i], true
		}
	}
	return nil, false
}
