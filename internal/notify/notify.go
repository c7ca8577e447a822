// Package notify pushes inspection events to the configured channels.
// Delivery is best-effort everywhere: a dropped notification never fails the
// transition that produced it.
package notify

import (
	"context"
	"log"
	"os/exec"
	"strings"
)

// Event is one notification-worthy occurrence, already rendered to text.
type Event struct {
	Kind       string // activity kind, e.g. inspection_failed
	PropertyID string
	Address    string
	Summary    string
	Detail     string
}

// Notifier delivers events to one channel.
type Notifier interface {
	Send(ctx context.Context, evt Event) error
}

// Fanout delivers an event to every notifier, logging failures and moving on.
func Fanout(ctx context.Context, notifiers []Notifier, evt Event) {
	for _, n := range notifiers {
		if err := n.Send(ctx, evt); err != nil {
			log.Printf("notify: %T: %v", n, err)
		}
	}
}

// CommandNotifier runs a shell command template for each event, e.g.
// "notify-send 'SystemHause' '{{.Summary}}'".
type CommandNotifier struct {
	Command string
}

// Send runs the templated command. A non-zero exit is returned as an error
// with the combined output attached.
func (c *CommandNotifier) Send(ctx context.Context, evt Event) error {
	if c.Command == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", templateEvent(c.Command, evt))
	if out, err := cmd.CombinedOutput(); err != nil {
		return &commandError{err: err, output: strings.TrimSpace(string(out))}
	}
	return nil
}

type commandError struct {
	err    error
	output string
}

func (e *commandError) Error() string {
	if e.output == "" {
		return "notify: command failed: " + e.err.Error()
	}
	return "notify: command failed: " + e.err.Error() + ": " + e.output
}

func (e *commandError) Unwrap() error { return e.err }

// templateEvent replaces placeholders in the command template with event
// values.
func templateEvent(command string, evt Event) string {
	r := strings.NewReplacer(
		"{{.Kind}}", evt.Kind,
		"{{.PropertyID}}", evt.PropertyID,
		"{{.Address}}", evt.Address,
		"{{.Summary}}", evt.Summary,
		"{{.Detail}}", evt.Detail,
	)
	return r.Replace(command)
}

// Color returns the accent color for an event kind, shared by the Slack and
// Discord senders.
func Color(kind string) string {
	switch {
	case strings.HasSuffix(kind, "_failed"), strings.HasSuffix(kind, "_rejected"):
		return "#d62828"
	case strings.HasSuffix(kind, "_passed"), strings.HasSuffix(kind, "_approved"), kind == "stage_advanced":
		return "#36a64f"
	default:
		return "#439fe0"
	}
}
