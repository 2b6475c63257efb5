package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a dispatch or of one delivery.
type Status string

const (
	StatusSent            Status = "sent"
	StatusFailed          Status = "failed"
	StatusSkipped         Status = "skipped"
	StatusLanguageMissing Status = "language_missing"
)

// Delivery records the handling of one message.
type Delivery struct {
	ID        uuid.UUID     `json:"id"`
	MessageID string        `json:"message_id"`
	GatewayID string        `json:"gateway_id"`
	Gateway   GatewayType   `json:"gateway,omitempty"`
	Status    Status        `json:"status"`
	State     State         `json:"state"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Result is the outcome of a dispatch.
type Result struct {
	NotificationID string     `json:"notification_id"`
	Status         Status     `json:"status"`
	Message        string     `json:"message,omitempty"`
	Deliveries     []Delivery `json:"deliveries"`
}

// OK reports whether at least one message was sent and none failed.
func (r Result) OK() bool {
	return r.Status == StatusSent
}

// Configured reports whether the notification exists. It is false when the id
// was empty or no notification is stored under it.
func (r Result) Configured() bool {
	return r.Status != StatusSkipped ||
		(r.Message != reasonNoNotification && r.Message != ErrConfigurationMissing.Error())
}

const reasonNoNotification = "no notification configured"

func skipped(id, reason string) Result {
	return Result{NotificationID: id, Status: StatusSkipped, Message: reason, Deliveries: []Delivery{}}
}

// aggregate derives the overall status: any failure wins, then any success,
// otherwise every message lacked a usable language.
func aggregate(id string, deliveries []Delivery) Result {
	r := Result{NotificationID: id, Status: StatusLanguageMissing, Deliveries: deliveries}

	var failures []string
	sent := 0
	for _, d := range deliveries {
		switch d.Status {
		case StatusFailed:
			failures = append(failures, d.MessageID+": "+d.Error)
		case StatusSent:
			sent++
		}
	}

	switch {
	case len(failures) > 0:
		r.Status = StatusFailed
		r.Message = strings.Join(failures, "; ")
	case sent > 0:
		r.Status = StatusSent
	default:
		r.Message = ErrLanguageNotFound.Error()
	}
	return r
}

func statusOf(s State) Status {
	switch s {
	case StateSent:
		return StatusSent
	case StateLanguageMissing:
		return StatusLanguageMissing
	case StateSkipped:
		return StatusSkipped
	}
	return StatusFailed
}
