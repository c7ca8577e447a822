package property

import (
	"errors"
	"fmt"
)

// Property stages, in progression order. A property's stage only ever moves
// forward; a failed inspection freezes the stage and flips status instead.
const (
	StagePreRock  = "pre-rock"
	StagePolyTest = "poly-test"
	StageFinal    = "final"
	StageComplete = "complete"
)

// Property statuses, attached to the current stage.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusPassed     = "passed"
	StatusFailed     = "failed"
)

// Inspection types.
const (
	TypePreRock    = "pre-rock"
	TypePolyTest   = "poly-test"
	TypeFinal      = "final"
	TypeFollowUp   = "follow-up"
	TypeBlowerDoor = "blower-door"
)

// Event is an inspection lifecycle event applied to a property.
type Event string

const (
	EventScheduled Event = "scheduled"
	EventStarted   Event = "started"
	EventPassed    Event = "passed"
	EventFailed    Event = "failed"
	EventCancelled Event = "cancelled"
)

var (
	// ErrInvalidStageTransition reports an inspection/stage mismatch, or any
	// attempt to schedule or fail against a completed property.
	ErrInvalidStageTransition = errors.New("invalid stage transition")

	// ErrValidation reports missing or malformed input.
	ErrValidation = errors.New("validation failed")
)

// stageOrder lists the stages a property progresses through.
var stageOrder = []string{StagePreRock, StagePolyTest, StageFinal, StageComplete}

// validTypes maps each inspectable stage to the inspection types it accepts.
// follow-up re-checks a failed terminal inspection and is valid at any
// incomplete stage; blower-door is part of final verification only.
var validTypes = map[string][]string{
	StagePreRock:  {TypePreRock, TypeFollowUp},
	StagePolyTest: {TypePolyTest, TypeFollowUp},
	StageFinal:    {TypeFinal, TypeBlowerDoor, TypeFollowUp},
}

// StageIndex returns the position of a stage in the progression, or -1 for
// an unknown stage.
func StageIndex(stage string) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// NextStage returns the stage after the given one. The second return value is
// false for the last stage or an unknown stage.
func NextStage(stage string) (string, bool) {
	i := StageIndex(stage)
	if i < 0 || i == len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[i+1], true
}

// TypeValidForStage reports whether an inspection of the given type may be
// scheduled while the property is at the given stage.
func TypeValidForStage(insType, stage string) bool {
	for _, t := range validTypes[stage] {
		if t == insType {
			return true
		}
	}
	return false
}

// AdvancesStage reports whether a passed inspection of the given type
// completes the stage's terminal check. The stage-named type is the terminal
// check; a follow-up is a re-check of a previously failed terminal check and
// counts the same. A passed blower-door never advances on its own.
func AdvancesStage(insType, stage string) bool {
	if stage == StageComplete {
		return false
	}
	return insType == stage || insType == TypeFollowUp
}

// Progress computes the property stage and status after an inspection event.
// It is a pure function: callers persist the result. The stage is monotonic;
// no event ever returns an earlier stage.
func Progress(stage, status string, event Event, insType string) (newStage, newStatus string, err error) {
	if StageIndex(stage) < 0 {
		return "", "", fmt.Errorf("property: unknown stage %q: %w", stage, ErrValidation)
	}

	switch event {
	case EventScheduled:
		if stage == StageComplete {
			return "", "", fmt.Errorf("property: stage is complete, no further inspections: %w", ErrInvalidStageTransition)
		}
		if !TypeValidForStage(insType, stage) {
			return "", "", fmt.Errorf("property: inspection type %q not valid at stage %q: %w", insType, stage, ErrInvalidStageTransition)
		}
		return stage, StatusScheduled, nil

	case EventStarted:
		return stage, StatusInProgress, nil

	case EventPassed:
		if !AdvancesStage(insType, stage) {
			return stage, StatusPassed, nil
		}
		if stage == StageFinal {
			return StageComplete, StatusPassed, nil
		}
		next, _ := NextStage(stage)
		return next, StatusPending, nil

	case EventFailed:
		if stage == StageComplete {
			return "", "", fmt.Errorf("property: stage is complete, cannot fail: %w", ErrInvalidStageTransition)
		}
		return stage, StatusFailed, nil

	case EventCancelled:
		// A cancelled inspection puts the property back to awaiting one,
		// except after completion (a leftover booking cancelled late).
		if stage == StageComplete {
			return StageComplete, StatusPassed, nil
		}
		return stage, StatusPending, nil

	default:
		return "", "", fmt.Errorf("property: unknown event %q: %w", event, ErrValidation)
	}
}
