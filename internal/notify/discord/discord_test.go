package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/systemhause/hause/internal/notify"
)

type mockSession struct {
	calls  int
	embeds []*discordgo.MessageEmbed
	errs   []error
}

func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.embeds = append(m.embeds, embed)
	var err error
	if m.calls < len(m.errs) {
		err = m.errs[m.calls]
	}
	m.calls++
	return &discordgo.Message{}, err
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "123"}); err == nil {
		t.Error("expected error without a bot token or session")
	}
	if _, err := New(Opts{Session: &mockSession{}}); err == nil {
		t.Error("expected error without a channel ID")
	}
	if _, err := New(Opts{Session: &mockSession{}, ChannelID: "123"}); err != nil {
		t.Errorf("New(): %v", err)
	}
}

func TestSend(t *testing.T) {
	sess := &mockSession{}
	n, err := New(Opts{Session: sess, ChannelID: "123"})
	if err != nil {
		t.Fatal(err)
	}

	evt := notify.Event{
		Kind:    "inspection_failed",
		Address: "123 Main St",
		Summary: "final failed",
		Detail:  "2 issues recorded",
	}
	if err := n.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if sess.calls != 1 {
		t.Fatalf("calls = %d, want 1", sess.calls)
	}

	embed := sess.embeds[0]
	if embed.Title != "final failed" {
		t.Errorf("Title = %q", embed.Title)
	}
	if embed.Color != 0xd62828 {
		t.Errorf("Color = %#x, want 0xd62828", embed.Color)
	}
	if len(embed.Fields) != 1 || embed.Fields[0].Value != "123 Main St" {
		t.Errorf("Fields = %+v, want one Property field", embed.Fields)
	}
}

func TestSendRetriesOnRateLimit(t *testing.T) {
	rateLimited := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusTooManyRequests},
	}
	sess := &mockSession{errs: []error{rateLimited}}
	n, err := New(Opts{Session: sess, ChannelID: "123"})
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Send(context.Background(), notify.Event{Summary: "x"}); err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if sess.calls != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", sess.calls)
	}
}

func TestSendNoRetryOnOtherErrors(t *testing.T) {
	sess := &mockSession{errs: []error{errors.New("unknown channel")}}
	n, err := New(Opts{Session: sess, ChannelID: "123"})
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Send(context.Background(), notify.Event{Summary: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if sess.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", sess.calls)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex  string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"36a64f", 0x36a64f},
		{"#FFFFFF", 0xffffff},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.hex); got != tt.want {
			t.Errorf("parseHexColor(%q) = %#x, want %#x", tt.hex, got, tt.want)
		}
	}
}
