package entities

// EventKind distinguishes the update types the router understands
type EventKind int

const (
	EventMessage EventKind = iota + 1
	EventCallback
)

// MediaKind is the structured content category of a message or a downloaded file
type MediaKind string

const (
	MediaNone      MediaKind = ""
	MediaVideo     MediaKind = "video"
	MediaAudio     MediaKind = "audio"
	MediaVoice     MediaKind = "voice"
	MediaVideoNote MediaKind = "video_note"
	MediaImage     MediaKind = "image"
	MediaDocument  MediaKind = "document"
)

// Sender identifies who produced an event
type Sender struct {
	ID       int64
	FullName string
	Username string
}

// Event is a platform update reduced to what the router needs
type Event struct {
	Kind   EventKind
	Sender *Sender
	ChatID int64
	// MessageID is the incoming message, or the message carrying the pressed button
	MessageID int
	Text      string
	Media     MediaKind
	FileID    string

	CallbackID   string
	CallbackData string
	// ReplyToText is the text of the message the event's message replies to
	ReplyToText string
}

// UserID returns the sender id or 0 when the event has no sender
func (e *Event) UserID() int64 {
	if e.Sender == nil {
		return 0
	}
	return e.Sender.ID
}

// IsMessage reports whether the event is an incoming message
func (e *Event) IsMessage() bool {
	return e.Kind == EventMessage
}

// IsCallback reports whether the event is a button press
func (e *Event) IsCallback() bool {
	return e.Kind == EventCallback
}

// Button is an inline keyboard button with either a URL or callback data
type Button struct {
	Text string
	URL  string
	Data string
}

// Keyboard is an inline keyboard, one slice per row
type Keyboard [][]Button

// Row builds a keyboard row
func Row(buttons ...Button) []Button {
	return buttons
}
