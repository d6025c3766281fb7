package orchestrator

import "fmt"

// ProgressEvent reports the state of one scene object during analysis.
type ProgressEvent struct {
	ObjectID string
	Label    string
	Status   ProgressStatus
	Message  string
}

// ProgressStatus is the state of an object within a run.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. Emit must not be called afterwards.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	name := fmt.Sprintf("#%s %s", event.ObjectID, event.Label)
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", name)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", name)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s: %s", name, event.Message)
		}
		return fmt.Sprintf("  ✓ %s complete", name)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", name, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", name)
	}
}
