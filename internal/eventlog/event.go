package eventlog

import (
	"fmt"
	"time"
)

// PresenceKind is the closed set of presence row types.
type PresenceKind int

const (
	// Online marks the start of a friend's presence interval.
	Online PresenceKind = iota
	// Offline marks its end.
	Offline
)

func (k PresenceKind) String() string {
	if k == Online {
		return "Online"
	}
	return "Offline"
}

// ParsePresenceKind maps the stored type column onto the closed enum.
func ParsePresenceKind(s string) (PresenceKind, error) {
	switch s {
	case "Online":
		return Online, nil
	case "Offline":
		return Offline, nil
	default:
		return 0, fmt.Errorf("unknown presence event type %q", s)
	}
}

// PresenceEvent is one row of the online/offline feed.
type PresenceEvent struct {
	CreatedAt   time.Time
	UserID      string
	DisplayName string
	Kind        PresenceKind
}
