package notification

import (
	"context"
	"log"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notice is a short user-facing message, the backend counterpart of the
// storefront's toast popups.
type Notice struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier delivers notices. Fire and forget; a lost notice must never
// fail the operation that produced it.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// LogNotifier writes notices to the process log
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, notice Notice) {
	if notice.Severity == "" {
		notice.Severity = SeverityDefault
	}
	log.Printf("[Notify] (%s) %s: %s", notice.Severity, notice.Title, notice.Description)
}

// NopNotifier discards all notices
type NopNotifier struct{}

func (NopNotifier) Notify(ctx context.Context, notice Notice) {}
