package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/systemhause/hause/internal/models"
	"github.com/systemhause/hause/internal/notify"
	"github.com/systemhause/hause/internal/property"
	"gorm.io/gorm"
)

// SummaryData holds the dashboard counts for the summary endpoint and the
// daily digest.
type SummaryData struct {
	Stages             []property.StageCount `json:"stages"`
	InspectionsToday   int64                 `json:"inspections_today"`
	PendingCorrections int64                 `json:"pending_corrections"`
	OpenIssues         int64                 `json:"open_issues"`
	ClosingSoon        []ClosingRow          `json:"closing_soon"`
}

// ClosingRow is a property whose closing date is inside the look-ahead window.
type ClosingRow struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	Community   string    `json:"community"`
	Stage       string    `json:"stage"`
	Status      string    `json:"status"`
	ClosingDate time.Time `json:"closing_date"`
}

// closingWindow is how far ahead the summary looks for closing dates.
const closingWindow = 14 * 24 * time.Hour

// Summary gathers the portal dashboard counts.
func Summary(db *gorm.DB) (*SummaryData, error) {
	stages, err := property.StageSummary(db)
	if err != nil {
		return nil, err
	}

	data := &SummaryData{Stages: stages}

	// Local midnight, not Truncate: the UTC day boundary is off by the zone
	// offset and would count the wrong inspections as "today".
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	if err := db.Model(&models.Inspection{}).
		Where("scheduled_at >= ? AND scheduled_at < ? AND status IN ?",
			dayStart, dayEnd, []string{"scheduled", "in-progress"}).
		Count(&data.InspectionsToday).Error; err != nil {
		return nil, fmt.Errorf("portal: count today's inspections: %w", err)
	}

	if err := db.Model(&models.CorrectionRequest{}).
		Where("status = ?", "pending").
		Count(&data.PendingCorrections).Error; err != nil {
		return nil, fmt.Errorf("portal: count pending corrections: %w", err)
	}

	if err := db.Model(&models.Issue{}).
		Where("resolved = ?", false).
		Count(&data.OpenIssues).Error; err != nil {
		return nil, fmt.Errorf("portal: count open issues: %w", err)
	}

	cutoff := time.Now().Add(closingWindow)
	var closing []models.Property
	if err := db.Where("closing_date IS NOT NULL AND closing_date <= ? AND stage != ?", cutoff, "complete").
		Order("closing_date ASC").Limit(20).Find(&closing).Error; err != nil {
		return nil, fmt.Errorf("portal: list closing soon: %w", err)
	}
	for _, p := range closing {
		data.ClosingSoon = append(data.ClosingSoon, ClosingRow{
			ID:          p.ID,
			Address:     p.Address,
			Community:   p.Community,
			Stage:       p.Stage,
			Status:      p.Status,
			ClosingDate: *p.ClosingDate,
		})
	}
	return data, nil
}

// SendDigest pushes the morning summary through every notifier. Best-effort:
// query failures are reported through the notifier log path, never returned.
func SendDigest(ctx context.Context, db *gorm.DB, notifiers []notify.Notifier) {
	data, err := Summary(db)
	if err != nil {
		notify.Fanout(ctx, notifiers, notify.Event{
			Kind:    "digest",
			Summary: "daily digest unavailable",
			Detail:  err.Error(),
		})
		return
	}

	var b strings.Builder
	for _, sc := range data.Stages {
		fmt.Fprintf(&b, "%s: %d\n", sc.Stage, sc.Count)
	}
	fmt.Fprintf(&b, "inspections today: %d\n", data.InspectionsToday)
	fmt.Fprintf(&b, "pending corrections: %d\n", data.PendingCorrections)
	fmt.Fprintf(&b, "open issues: %d\n", data.OpenIssues)
	if len(data.ClosingSoon) > 0 {
		fmt.Fprintf(&b, "closing within 14 days: %d\n", len(data.ClosingSoon))
	}

	notify.Fanout(ctx, notifiers, notify.Event{
		Kind:    "digest",
		Summary: fmt.Sprintf("SystemHause digest for %s", time.Now().Format("Mon Jan 2")),
		Detail:  strings.TrimRight(b.String(), "\n"),
	})
}
