package parser

import (
	"regexp"
	"strings"

	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

// meridiem matches "AM", "pm", "a.m." with the optional (narrow) no-break
// space WhatsApp puts in front of it.
const meridiem = `[\s\x{202F}\x{00A0}]?[AaPp]\.?[Mm]\.?`

// headerPatterns are tried in order; the first match wins.
var headerPatterns = []*regexp.Regexp{
	// [1/15/24, 10:30:15 AM] Body
	regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}),\s(\d{1,2}:\d{2}(?::\d{2})?` + meridiem + `)\]\s(.*)$`),
	// 1/15/24, 10:30 AM - Body
	regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),\s(\d{1,2}:\d{2}(?::\d{2})?` + meridiem + `)\s-\s(.*)$`),
	// 15/01/2024, 22:30 - Body
	regexp.MustCompile(`^(\d{1,2}[./]\d{1,2}[./]\d{2,4}),?\s(\d{1,2}:\d{2}(?::\d{2})?)\s-\s(.*)$`),
	// 2024-01-15, 22:30 - Body
	regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}),?\s(\d{1,2}:\d{2}(?::\d{2})?)\s-\s(.*)$`),
}

type state int

const (
	stateIdle state = iota
	stateAccumulating
)

type lineClass int

const (
	lineHeader lineClass = iota
	lineSystem
	lineContinuation
)

type action int

const (
	actionOpen    action = iota // finalize current, start a new message
	actionDiscard               // finalize current, drop the system line
	actionAppend                // add the line to the current message
	actionDrop                  // ignore the line
)

type transition struct {
	action action
	next   state
}

// transitions[state][class] drives the parser.
var transitions = [2][3]transition{
	stateIdle: {
		lineHeader:       {actionOpen, stateAccumulating},
		lineSystem:       {actionDiscard, stateIdle},
		lineContinuation: {actionDrop, stateIdle},
	},
	stateAccumulating: {
		lineHeader:       {actionOpen, stateAccumulating},
		lineSystem:       {actionDiscard, stateIdle},
		lineContinuation: {actionAppend, stateAccumulating},
	},
}

// header is the decoded part of a timestamped line.
type header struct {
	date, time, sender, text string
}

// Parser turns a WhatsApp export into a Transcript.
type Parser struct {
	vocab *vocab.Vocabulary
}

// New creates a parser using the given vocabulary for system-event and media detection.
func New(v *vocab.Vocabulary) *Parser {
	if v == nil {
		v = vocab.Default()
	}
	return &Parser{vocab: v}
}

// Parse parses text with the default vocabulary.
func Parse(text string) models.Transcript {
	return New(nil).Parse(text)
}

// Parse never fails: lines it cannot place are dropped.
func (p *Parser) Parse(text string) models.Transcript {
	run := &parseRun{index: make(map[string]int)}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return run.result()
	}

	for _, line := range strings.Split(text, "\n") {
		class, h := p.classify(line)
		t := transitions[run.state][class]
		switch t.action {
		case actionOpen:
			run.finalize()
			run.open(h, p.isMedia(h.text))
		case actionDiscard:
			run.finalize()
		case actionAppend:
			run.current.Text += "\n" + line
		case actionDrop:
		}
		run.state = t.next
	}
	run.finalize()

	return run.result()
}

func (p *Parser) classify(line string) (lineClass, header) {
	clean := strings.TrimLeft(line, "\u200e\ufeff")
	for _, re := range headerPatterns {
		m := re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		h := header{date: m[1], time: m[2]}
		sender, text, ok := strings.Cut(m[3], ": ")
		if !ok || strings.TrimSpace(sender) == "" {
			// WhatsApp prints membership events without a sender.
			return lineSystem, h
		}
		// only the sender part can carry an event phrase; message text never does
		if p.isSystemEvent(sender) {
			return lineSystem, h
		}
		h.sender = strings.TrimSpace(sender)
		h.text = text
		return lineHeader, h
	}
	return lineContinuation, header{}
}

func (p *Parser) isSystemEvent(body string) bool {
	lower := strings.ToLower(body)
	for _, phrase := range p.vocab.SystemEvents {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (p *Parser) isMedia(text string) bool {
	lower := strings.ToLower(strings.Trim(text, "\u200e "))
	for _, marker := range p.vocab.MediaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseRun is the mutable state of one Parse call.
type parseRun struct {
	state    state
	current  *models.Message
	messages []models.Message
	members  []models.Member
	index    map[string]int
}

func (r *parseRun) open(h header, media bool) {
	r.current = &models.Message{
		Date:    h.date,
		Time:    h.time,
		Sender:  h.sender,
		Text:    h.text,
		IsMedia: media,
	}

	i, ok := r.index[h.sender]
	if !ok {
		i = len(r.members)
		r.index[h.sender] = i
		r.members = append(r.members, models.Member{Name: h.sender, FirstSeen: h.date})
	}
	r.members[i].MessageCount++
	r.members[i].LastSeen = h.date
}

func (r *parseRun) finalize() {
	if r.current == nil {
		return
	}
	msg := *r.current
	r.messages = append(r.messages, msg)
	i := r.index[msg.Sender]
	r.members[i].Messages = append(r.members[i].Messages, msg)
	r.current = nil
}

func (r *parseRun) result() models.Transcript {
	t := models.Transcript{
		Messages: r.messages,
		Members:  r.members,
	}
	if t.Messages == nil {
		t.Messages = []models.Message{}
	}
	if t.Members == nil {
		t.Members = []models.Member{}
	}
	t.Stats.TotalMessages = len(t.Messages)
	t.Stats.TotalMembers = len(t.Members)
	if n := len(t.Messages); n > 0 {
		t.Stats.FirstDate = t.Messages[0].Date
		t.Stats.LastDate = t.Messages[n-1].Date
	}
	return t
}

// Canonical renders messages back into export form, one header line per
// message followed by its continuation lines. Parsing the output yields the
// same messages.
func Canonical(messages []models.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Date)
		b.WriteString(", ")
		b.WriteString(m.Time)
		b.WriteString(" - ")
		b.WriteString(m.Sender)
		b.WriteString(": ")
		b.WriteString(m.Text)
	}
	return b.String()
}
