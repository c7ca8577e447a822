package property

import (
	"errors"
	"testing"
)

func TestStageIndex(t *testing.T) {
	tests := []struct {
		stage string
		want  int
	}{
		{StagePreRock, 0},
		{StagePolyTest, 1},
		{StageFinal, 2},
		{StageComplete, 3},
		{"unknown", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := StageIndex(tt.stage); got != tt.want {
			t.Errorf("StageIndex(%q) = %d, want %d", tt.stage, got, tt.want)
		}
	}
}

func TestNextStage(t *testing.T) {
	tests := []struct {
		stage  string
		want   string
		wantOK bool
	}{
		{StagePreRock, StagePolyTest, true},
		{StagePolyTest, StageFinal, true},
		{StageFinal, StageComplete, true},
		{StageComplete, "", false},
		{"unknown", "", false},
	}
	for _, tt := range tests {
		got, ok := NextStage(tt.stage)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NextStage(%q) = (%q, %v), want (%q, %v)", tt.stage, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTypeValidForStage(t *testing.T) {
	tests := []struct {
		insType string
		stage   string
		want    bool
	}{
		{TypePreRock, StagePreRock, true},
		{TypeFollowUp, StagePreRock, true},
		{TypePolyTest, StagePreRock, false},
		{TypeFinal, StagePreRock, false},
		{TypeBlowerDoor, StagePreRock, false},

		{TypePolyTest, StagePolyTest, true},
		{TypeFollowUp, StagePolyTest, true},
		{TypePreRock, StagePolyTest, false},

		{TypeFinal, StageFinal, true},
		{TypeBlowerDoor, StageFinal, true},
		{TypeFollowUp, StageFinal, true},
		{TypePreRock, StageFinal, false},

		// Complete stage accepts nothing.
		{TypeFinal, StageComplete, false},
		{TypeFollowUp, StageComplete, false},
	}
	for _, tt := range tests {
		if got := TypeValidForStage(tt.insType, tt.stage); got != tt.want {
			t.Errorf("TypeValidForStage(%q, %q) = %v, want %v", tt.insType, tt.stage, got, tt.want)
		}
	}
}

func TestAdvancesStage(t *testing.T) {
	tests := []struct {
		insType string
		stage   string
		want    bool
	}{
		{TypePreRock, StagePreRock, true},
		{TypeFollowUp, StagePreRock, true},
		{TypePolyTest, StagePolyTest, true},
		{TypeFinal, StageFinal, true},
		{TypeFollowUp, StageFinal, true},

		// blower-door never advances on its own.
		{TypeBlowerDoor, StageFinal, false},

		{TypeFollowUp, StageComplete, false},
	}
	for _, tt := range tests {
		if got := AdvancesStage(tt.insType, tt.stage); got != tt.want {
			t.Errorf("AdvancesStage(%q, %q) = %v, want %v", tt.insType, tt.stage, got, tt.want)
		}
	}
}

func TestProgress_Scheduled(t *testing.T) {
	stage, status, err := Progress(StagePreRock, StatusPending, EventScheduled, TypePreRock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stage != StagePreRock || status != StatusScheduled {
		t.Errorf("got (%q, %q), want (%q, %q)", stage, status, StagePreRock, StatusScheduled)
	}
}

func TestProgress_Scheduled_WrongType(t *testing.T) {
	_, _, err := Progress(StagePreRock, StatusPending, EventScheduled, TypeFinal)
	if !errors.Is(err, ErrInvalidStageTransition) {
		t.Fatalf("error = %v, want ErrInvalidStageTransition", err)
	}
}

func TestProgress_Scheduled_CompleteStage(t *testing.T) {
	_, _, err := Progress(StageComplete, StatusPassed, EventScheduled, TypeFollowUp)
	if !errors.Is(err, ErrInvalidStageTransition) {
		t.Fatalf("error = %v, want ErrInvalidStageTransition", err)
	}
}

func TestProgress_Started(t *testing.T) {
	stage, status, err := Progress(StagePolyTest, StatusScheduled, EventStarted, TypePolyTest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stage != StagePolyTest || status != StatusInProgress {
		t.Errorf("got (%q, %q), want (%q, %q)", stage, status, StagePolyTest, StatusInProgress)
	}
}

func TestProgress_Passed_AdvancesStage(t *testing.T) {
	tests := []struct {
		name       string
		stage      string
		insType    string
		wantStage  string
		wantStatus string
	}{
		{"pre-rock terminal", StagePreRock, TypePreRock, StagePolyTest, StatusPending},
		{"pre-rock follow-up", StagePreRock, TypeFollowUp, StagePolyTest, StatusPending},
		{"poly-test terminal", StagePolyTest, TypePolyTest, StageFinal, StatusPending},
		{"final terminal completes", StageFinal, TypeFinal, StageComplete, StatusPassed},
		{"final follow-up completes", StageFinal, TypeFollowUp, StageComplete, StatusPassed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, status, err := Progress(tt.stage, StatusInProgress, EventPassed, tt.insType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stage != tt.wantStage || status != tt.wantStatus {
				t.Errorf("got (%q, %q), want (%q, %q)", stage, status, tt.wantStage, tt.wantStatus)
			}
		})
	}
}

func TestProgress_Passed_BlowerDoorDoesNotAdvance(t *testing.T) {
	stage, status, err := Progress(StageFinal, StatusInProgress, EventPassed, TypeBlowerDoor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stage != StageFinal || status != StatusPassed {
		t.Errorf("got (%q, %q), want (%q, %q)", stage, status, StageFinal, StatusPassed)
	}
}

func TestProgress_Failed_FreezesStage(t *testing.T) {
	stage, status, err := Progress(StagePreRock, StatusInProgress, EventFailed, TypePreRock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stage != StagePreRock || status != StatusFailed {
		t.Errorf("got (%q, %q), want (%q, %q)", stage, status, StagePreRock, StatusFailed)
	}
}

func TestProgress_Failed_CompleteStageRejected(t *testing.T) {
	_, _, err := Progress(StageComplete, StatusPassed, EventFailed, TypeFinal)
	if !errors.Is(err, ErrInvalidStageTransition) {
		t.Fatalf("error = %v, want ErrInvalidStageTransition", err)
	}
}

func TestProgress_UnknownStage(t *testing.T) {
	_, _, err := Progress("demolition", StatusPending, EventScheduled, TypePreRock)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestProgress_UnknownEvent(t *testing.T) {
	_, _, err := Progress(StagePreRock, StatusPending, Event("vanished"), TypePreRock)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

// TestProgress_StageMonotonic verifies no event ever moves a property to an
// earlier stage.
func TestProgress_StageMonotonic(t *testing.T) {
	stages := []string{StagePreRock, StagePolyTest, StageFinal, StageComplete}
	events := []Event{EventScheduled, EventStarted, EventPassed, EventFailed}
	types := []string{TypePreRock, TypePolyTest, TypeFinal, TypeFollowUp, TypeBlowerDoor}

	for _, stage := range stages {
		for _, event := range events {
			for _, insType := range types {
				newStage, _, err := Progress(stage, StatusPending, event, insType)
				if err != nil {
					continue
				}
				if StageIndex(newStage) < StageIndex(stage) {
					t.Errorf("Progress(%q, %q, %q) regressed stage to %q", stage, event, insType, newStage)
				}
			}
		}
	}
}
