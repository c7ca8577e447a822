// Package correction governs the builder remediation workflow: a submission
// responding to a failed inspection's issue, reviewed by an admin.
package correction

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/systemhause/hause/internal/activity"
	"github.com/systemhause/hause/internal/db"
	"github.com/systemhause/hause/internal/models"
	"gorm.io/gorm"
)

// Correction request statuses. approved and rejected are terminal: a rejected
// submission is never reopened, the builder submits a fresh one.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Review decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

var (
	// ErrNotEligible reports submission preconditions unmet: the inspection
	// is not failed, the issue is already resolved, or no evidence was given.
	ErrNotEligible = errors.New("not eligible for correction")

	// ErrAlreadyReviewed reports a second review of the same request.
	ErrAlreadyReviewed = errors.New("correction already reviewed")

	// ErrValidation reports missing or malformed input.
	ErrValidation = errors.New("validation failed")
)

// FollowUpScheduler books a re-check of the failed inspection after an
// approval. It is an external collaborator: failures are logged, never rolled
// into the review outcome.
type FollowUpScheduler func(failedInspectionID string, at time.Time) error

// SubmitOpts holds parameters for a builder remediation submission.
type SubmitOpts struct {
	PropertyID   string
	InspectionID string
	IssueID      uint
	SubmittedBy  string
	Notes        string
	PhotoURLs    []string
}

// ListFilters holds optional filters for listing correction requests.
type ListFilters struct {
	PropertyID string
	Status     string
}

// Submit creates a pending correction request for one unresolved issue of a
// failed inspection. At least one photo or non-empty notes is required.
func Submit(gdb *gorm.DB, opts SubmitOpts) (*models.CorrectionRequest, error) {
	if opts.PropertyID == "" || opts.InspectionID == "" || opts.IssueID == 0 {
		return nil, fmt.Errorf("correction: property, inspection, and issue IDs are required: %w", ErrValidation)
	}
	if opts.Notes == "" && len(opts.PhotoURLs) == 0 {
		return nil, fmt.Errorf("correction: at least one photo or non-empty notes required: %w", ErrNotEligible)
	}

	var ins models.Inspection
	if err := gdb.Where("id = ?", opts.InspectionID).First(&ins).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("correction: inspection not found: %s", opts.InspectionID)
		}
		return nil, fmt.Errorf("correction: get inspection %s: %w", opts.InspectionID, err)
	}
	if ins.Status != "failed" {
		return nil, fmt.Errorf("correction: inspection %s is %s, corrections answer failed inspections: %w",
			ins.ID, ins.Status, ErrNotEligible)
	}
	if ins.PropertyID != opts.PropertyID {
		return nil, fmt.Errorf("correction: inspection %s belongs to %s, not %s: %w",
			ins.ID, ins.PropertyID, opts.PropertyID, ErrValidation)
	}

	var issue models.Issue
	if err := gdb.Where("id = ? AND inspection_id = ?", opts.IssueID, opts.InspectionID).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("correction: issue %d not found on inspection %s", opts.IssueID, opts.InspectionID)
		}
		return nil, fmt.Errorf("correction: get issue %d: %w", opts.IssueID, err)
	}
	if issue.Resolved {
		return nil, fmt.Errorf("correction: issue %d is already resolved: %w", issue.ID, ErrNotEligible)
	}

	photos, err := json.Marshal(opts.PhotoURLs)
	if err != nil {
		return nil, fmt.Errorf("correction: marshal photos: %w", err)
	}

	id, err := db.GenerateID("corr")
	if err != nil {
		return nil, err
	}

	req := models.CorrectionRequest{
		ID:           id,
		PropertyID:   opts.PropertyID,
		InspectionID: opts.InspectionID,
		IssueID:      opts.IssueID,
		BuilderNotes: opts.Notes,
		PhotoURLs:    string(photos),
		Status:       StatusPending,
		SubmittedBy:  opts.SubmittedBy,
		SubmittedAt:  time.Now(),
	}
	if err := gdb.Create(&req).Error; err != nil {
		return nil, fmt.Errorf("correction: submit: %w", err)
	}

	activity.Record(gdb, opts.PropertyID, activity.KindCorrectionSubmitted, opts.SubmittedBy,
		fmt.Sprintf("correction submitted for issue #%d", opts.IssueID), req.ID)
	return &req, nil
}

// Review applies a decision to a pending correction request. Rejecting
// requires non-empty notes. Approving resolves the issue and, when a
// scheduler is supplied, books a follow-up inspection one week out. The
// review itself is atomic: a guarded update ensures each request leaves
// pending exactly once, even under concurrent reviewers.
func Review(gdb *gorm.DB, id, decision, reviewerID, notes string, sched FollowUpScheduler) (*models.CorrectionRequest, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, fmt.Errorf("correction: unknown decision %q: %w", decision, ErrValidation)
	}
	if decision == DecisionReject && notes == "" {
		return nil, fmt.Errorf("correction: rejecting requires review notes: %w", ErrValidation)
	}
	if reviewerID == "" {
		return nil, fmt.Errorf("correction: reviewer ID is required: %w", ErrValidation)
	}

	var req models.CorrectionRequest
	newStatus := StatusApproved
	if decision == DecisionReject {
		newStatus = StatusRejected
	}

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("correction: not found: %s", id)
			}
			return fmt.Errorf("correction: get %s: %w", id, err)
		}

		now := time.Now()
		result := tx.Model(&models.CorrectionRequest{}).
			Where("id = ? AND status = ?", id, StatusPending).
			Updates(map[string]interface{}{
				"status":       newStatus,
				"reviewed_by":  reviewerID,
				"reviewed_at":  now,
				"review_notes": notes,
			})
		if result.Error != nil {
			return fmt.Errorf("correction: review %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("correction: %s is %s: %w", id, req.Status, ErrAlreadyReviewed)
		}
		req.Status = newStatus
		req.ReviewedBy = reviewerID
		req.ReviewedAt = &now
		req.ReviewNotes = notes

		if decision == DecisionApprove {
			if err := tx.Model(&models.Issue{}).Where("id = ?", req.IssueID).
				Updates(map[string]interface{}{
					"resolved":    true,
					"resolved_by": reviewerID,
					"resolved_at": now,
				}).Error; err != nil {
				return fmt.Errorf("correction: resolve issue %d: %w", req.IssueID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := activity.KindCorrectionApproved
	summary := fmt.Sprintf("correction %s approved", id)
	if decision == DecisionReject {
		kind = activity.KindCorrectionRejected
		summary = fmt.Sprintf("correction %s rejected", id)
	}
	activity.Record(gdb, req.PropertyID, kind, reviewerID, summary, notes)

	if decision == DecisionApprove && sched != nil {
		if err := sched(req.InspectionID, time.Now().AddDate(0, 0, 7)); err != nil {
			log.Printf("correction: schedule follow-up for %s: %v", req.InspectionID, err)
		}
	}
	return &req, nil
}

// BulkApprove reviews every still-pending request in ids as approved with
// notes "Bulk approved". Requests already reviewed are silently skipped.
// Returns the number approved.
func BulkApprove(gdb *gorm.DB, ids []string, reviewerID string, sched FollowUpScheduler) (int, error) {
	approved := 0
	for _, id := range ids {
		_, err := Review(gdb, id, DecisionApprove, reviewerID, "Bulk approved", sched)
		if err != nil {
			if errors.Is(err, ErrAlreadyReviewed) {
				continue
			}
			return approved, err
		}
		approved++
	}
	return approved, nil
}

// Get retrieves a correction request by ID, preloading its issue and
// inspection.
func Get(gdb *gorm.DB, id string) (*models.CorrectionRequest, error) {
	var req models.CorrectionRequest
	if err := gdb.Preload("Issue").Preload("Inspection").Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("correction: not found: %s", id)
		}
		return nil, fmt.Errorf("correction: get %s: %w", id, err)
	}
	return &req, nil
}

// List returns correction requests matching the given filters, newest first.
func List(gdb *gorm.DB, filters ListFilters) ([]models.CorrectionRequest, error) {
	q := gdb.Model(&models.CorrectionRequest{})

	if filters.PropertyID != "" {
		q = q.Where("property_id = ?", filters.PropertyID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	var reqs []models.CorrectionRequest
	if err := q.Order("submitted_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("correction: list: %w", err)
	}
	return reqs, nil
}
