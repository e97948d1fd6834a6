package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientSubmit        MessageType = "submit"
	TypeClientReplay        MessageType = "replay"
	TypeControls            MessageType = "controls"
	TypeNotification        MessageType = "notification"
	TypeNotificationCleared MessageType = "notification_cleared"
	TypePlay                MessageType = "play"
	TypeSnapshot            MessageType = "snapshot"
	TypeErrorEvent          MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientSubmit asks the console to synthesize Text. Blank text is forwarded
// as-is; the console reports it on the notification surface.
type ClientSubmit struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
}

type ClientReplay struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
}

type ControlsEvent struct {
	Type            MessageType `json:"type"`
	SessionID       string      `json:"session_id"`
	State           string      `json:"state"`
	SubmitEnabled   bool        `json:"submit_enabled"`
	PlaybackEnabled bool        `json:"playback_enabled"`
	SubmitLabel     string      `json:"submit_label"`
}

type NotificationEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	ID        uint64      `json:"id"`
	Text      string      `json:"text"`
	Severity  string      `json:"severity"`
	Emphasis  bool        `json:"emphasis"`
}

// NotificationCleared names the message that expired. Clients ignore it when
// they already show a newer ID.
type NotificationCleared struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	ID        uint64      `json:"id"`
}

type PlayEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	AudioURL  string      `json:"audio_url"`
}

type SnapshotEvent struct {
	Type         MessageType        `json:"type"`
	SessionID    string             `json:"session_id"`
	Controls     ControlsEvent      `json:"controls"`
	Notification *NotificationEvent `json:"notification,omitempty"`
	LastAudioURL string             `json:"last_audio_url,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Source    string      `json:"source"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientSubmit:
		var msg ClientSubmit
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if strings.TrimSpace(msg.SessionID) == "" {
			return nil, errors.New("invalid submit")
		}
		return msg, nil
	case TypeClientReplay:
		var msg ClientReplay
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if strings.TrimSpace(msg.SessionID) == "" {
			return nil, errors.New("invalid replay")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
