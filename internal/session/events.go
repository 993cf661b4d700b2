// internal/session/events.go
//
// Recorder: a Presenter that turns every call into a JSON-friendly Event
// and queues it until a transport drains the queue.

package session

import "github.com/robalobadob/motdevine/internal/game"

// EventKind names a presenter call.
type EventKind string

const (
	EventBoard      EventKind = "board"
	EventLetters    EventKind = "letters"
	EventHint       EventKind = "hint"
	EventReveal     EventKind = "reveal"
	EventHideReveal EventKind = "hide_reveal"
	EventHelpLabel  EventKind = "help_label"
	EventCategories EventKind = "categories"
	EventFeedback   EventKind = "feedback"
)

// Event is one recorded presenter call, shaped for JSON transports.
type Event struct {
	Kind       EventKind          `json:"kind"`
	Text       string             `json:"text,omitempty"`
	Severity   Severity           `json:"severity,omitempty"`
	Length     int                `json:"length,omitempty"`
	Input      string             `json:"input,omitempty"`
	Letters    []game.LetterState `json:"letters,omitempty"`
	Categories []CategoryOption   `json:"categories,omitempty"`
	Exhausted  bool               `json:"exhausted,omitempty"`
}

// Recorder is a Presenter that queues events until drained. It is not safe
// for concurrent use; it shares the Game's single writer.
type Recorder struct {
	events []Event
}

var _ Presenter = (*Recorder)(nil)

// Drain returns the queued events and empties the queue.
func (r *Recorder) Drain() []Event {
	out := r.events
	r.events = nil
	if out == nil {
		out = []Event{}
	}
	return out
}

// Pending reports how many events are queued.
func (r *Recorder) Pending() int { return len(r.events) }

func (r *Recorder) push(e Event) { r.events = append(r.events, e) }

func (r *Recorder) NewBoard(length int) { r.push(Event{Kind: EventBoard, Length: length}) }

func (r *Recorder) RenderLetters(input string, states []game.LetterState) {
	r.push(Event{Kind: EventLetters, Input: input, Letters: append([]game.LetterState(nil), states...)})
}

func (r *Recorder) ShowHint(text string)   { r.push(Event{Kind: EventHint, Text: text}) }
func (r *Recorder) ShowReveal(text string) { r.push(Event{Kind: EventReveal, Text: text}) }
func (r *Recorder) HideReveal()            { r.push(Event{Kind: EventHideReveal}) }

func (r *Recorder) ShowHelpLabel(label string, exhausted bool) {
	r.push(Event{Kind: EventHelpLabel, Text: label, Exhausted: exhausted})
}

func (r *Recorder) ShowCategories(options []CategoryOption) {
	r.push(Event{Kind: EventCategories, Categories: append([]CategoryOption(nil), options...)})
}

func (r *Recorder) ShowFeedback(msg string, sev Severity) {
	r.push(Event{Kind: EventFeedback, Text: msg, Severity: sev})
}
