package flash

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Level is the severity of a flash message.
//
// Levels are ordered: LevelDebug < LevelInfo < LevelSuccess < LevelWarning <
// LevelError. The ordering is used for filtering - a framework configured
// with a minimum level drops every message below it. By convention the level
// also drives presentation (e.g. red for errors, orange for warnings).
type Level int

const (
	// LevelDebug marks development-related messages, usually dropped in production.
	LevelDebug Level = iota
	// LevelInfo marks informational messages - e.g. "Your last login was two days ago".
	LevelInfo
	// LevelSuccess marks positive feedback after a successful action.
	LevelSuccess
	// LevelWarning marks something the user should act on soon.
	LevelWarning
	// LevelError marks a failed action - e.g. "The provided credentials are invalid".
	LevelError
)

// ErrUnknownLevel is returned when parsing a string that is not a valid level name.
var ErrUnknownLevel = errors.New("flash: unknown level")

// levelNames are the wire names of the levels, indexed by ordinal.
// They are part of the serialized message format and must stay stable.
var levelNames = [...]string{"debug", "info", "success", "warning", "error"}

// String returns the lowercase name of the level.
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a level name back into a Level.
// Only the closed set of known names is accepted; anything else returns
// ErrUnknownLevel. Ordinals are never accepted from untrusted input.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return 0, errors.Join(ErrUnknownLevel, fmt.Errorf("got %q", s))
}

// MarshalJSON encodes the level as its name.
func (l Level) MarshalJSON() ([]byte, error) {
	if l < LevelDebug || l > LevelError {
		return nil, errors.Join(ErrUnknownLevel, fmt.Errorf("got ordinal %d", int(l)))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level from its name, validating against the closed set.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
