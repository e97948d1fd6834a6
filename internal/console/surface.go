package console

import "time"

type Severity string

const (
	SeverityNormal Severity = "normal"
	SeverityError  Severity = "error"
)

type RequestState string

const (
	StateIdle     RequestState = "idle"
	StateInFlight RequestState = "in_flight"
)

const (
	LabelReady      = "SYNTHESIZE"
	LabelProcessing = "PROCESSING..."
)

// Notification is one message on the notification surface. Emphasis is set for
// error messages and lasts until this message's own expiry.
type Notification struct {
	ID       uint64    `json:"id"`
	Text     string    `json:"text"`
	Severity Severity  `json:"severity"`
	Emphasis bool      `json:"emphasis"`
	ShownAt  time.Time `json:"shown_at"`
}

// Controls is the one-way signal the presentation layer renders.
type Controls struct {
	State           RequestState `json:"state"`
	SubmitEnabled   bool         `json:"submit_enabled"`
	PlaybackEnabled bool         `json:"playback_enabled"`
	SubmitLabel     string       `json:"submit_label"`
}

type Display interface {
	ShowNotification(n Notification)
	ClearNotification(n Notification)
}

type ControlSurface interface {
	SetControls(c Controls)
}

// Player begins playback of an audio reference. Playback failures are not
// reported back.
type Player interface {
	Play(audioRef string)
}

// Surface is everything the core drives on the presentation side.
type Surface interface {
	Display
	ControlSurface
	Player
}

// Recorder receives lifecycle observations. Implementations must not block.
type Recorder interface {
	ObserveSubmission(outcome string, d time.Duration)
	ObserveNotification(severity string)
	ObserveReplay(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(string, time.Duration) {}
func (nopRecorder) ObserveNotification(string)              {}
func (nopRecorder) ObserveReplay(string)                    {}
