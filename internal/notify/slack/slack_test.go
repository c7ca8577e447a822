package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/systemhause/hause/internal/notify"
)

type mockClient struct {
	calls    int
	channels []string
	errs     []error // errs[i] returned on call i; nil past the end
}

func (m *mockClient) PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error) {
	m.channels = append(m.channels, channelID)
	var err error
	if m.calls < len(m.errs) {
		err = m.errs[m.calls]
	}
	m.calls++
	return "", "", err
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "C123"}); err == nil {
		t.Error("expected error without a bot token or client")
	}
	if _, err := New(Opts{Client: &mockClient{}}); err == nil {
		t.Error("expected error without a channel ID")
	}
	if _, err := New(Opts{Client: &mockClient{}, ChannelID: "C123"}); err != nil {
		t.Errorf("New(): %v", err)
	}
}

func TestSend(t *testing.T) {
	client := &mockClient{}
	n, err := New(Opts{Client: client, ChannelID: "C123"})
	if err != nil {
		t.Fatal(err)
	}

	evt := notify.Event{
		Kind:    "inspection_passed",
		Address: "123 Main St",
		Summary: "pre-rock passed",
	}
	if err := n.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
	if client.channels[0] != "C123" {
		t.Errorf("channel = %q, want C123", client.channels[0])
	}
}

func TestSendRetriesOnRateLimit(t *testing.T) {
	client := &mockClient{
		errs: []error{&slackapi.RateLimitedError{RetryAfter: time.Millisecond}},
	}
	n, err := New(Opts{Client: client, ChannelID: "C123"})
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Send(context.Background(), notify.Event{Summary: "x"}); err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", client.calls)
	}
}

func TestSendNoRetryOnOtherErrors(t *testing.T) {
	client := &mockClient{errs: []error{errors.New("channel_not_found")}}
	n, err := New(Opts{Client: client, ChannelID: "C123"})
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Send(context.Background(), notify.Event{Summary: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", client.calls)
	}
}
