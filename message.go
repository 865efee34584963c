package flash

import "encoding/json"

// Message is a one-time user notification.
//
// A message carries a string of content and a [Level]. It is immutable once
// constructed: the collection currently holding it (the per-request mailbox,
// or the list loaded from an incoming request) owns it exclusively.
type Message struct {
	content string
	level   Level
}

// New builds a Message with the given content and level.
func New(content string, level Level) Message {
	return Message{content: content, level: level}
}

// Debug builds a debug-level Message.
func Debug(content string) Message {
	return New(content, LevelDebug)
}

// Info builds an info-level Message.
func Info(content string) Message {
	return New(content, LevelInfo)
}

// Success builds a success-level Message.
func Success(content string) Message {
	return New(content, LevelSuccess)
}

// Warning builds a warning-level Message.
func Warning(content string) Message {
	return New(content, LevelWarning)
}

// Error builds an error-level Message.
func Error(content string) Message {
	return New(content, LevelError)
}

// Content returns the string content of the message.
func (m Message) Content() string {
	return m.content
}

// Level returns the severity level of the message.
func (m Message) Level() Level {
	return m.level
}

// messageJSON is the wire representation of a Message.
type messageJSON struct {
	Content string `json:"content"`
	Level   Level  `json:"level"`
}

// MarshalJSON encodes the message as a {content, level} record.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{Content: m.content, Level: m.level})
}

// UnmarshalJSON decodes a {content, level} record.
// The level is validated against the closed set of known names.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.content = raw.Content
	m.level = raw.Level
	return nil
}
