package calendar

import (
	"testing"
	"time"

	"github.com/systemhause/hause/internal/models"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func ins(id string, scheduled time.Time) models.Inspection {
	return models.Inspection{ID: id, PropertyID: "prop-00001", Type: "pre-rock", ScheduledAt: scheduled}
}

func TestBucket_Day(t *testing.T) {
	day := at(t, "2025-03-10 00:00")
	inspections := []models.Inspection{
		ins("insp-00001", at(t, "2025-03-10 14:00")),
		ins("insp-00002", at(t, "2025-03-11 09:00")), // out of range
		ins("insp-00003", at(t, "2025-03-10 09:00")),
	}

	buckets, err := Bucket(inspections, day, Day)
	if err != nil {
		t.Fatalf("Bucket(): %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("len(buckets) = %d, want 1", len(buckets))
	}
	got := buckets[0].Inspections
	if len(got) != 2 {
		t.Fatalf("len(inspections) = %d, want 2", len(got))
	}
	// Ordered by time.
	if got[0].ID != "insp-00003" || got[1].ID != "insp-00001" {
		t.Errorf("order = [%s %s], want [insp-00003 insp-00001]", got[0].ID, got[1].ID)
	}
}

func TestBucket_Week(t *testing.T) {
	// 2025-03-12 is a Wednesday; the week runs Sun 03-09 .. Sat 03-15.
	buckets, err := Bucket(nil, at(t, "2025-03-12 00:00"), Week)
	if err != nil {
		t.Fatalf("Bucket(): %v", err)
	}
	if len(buckets) != 7 {
		t.Fatalf("len(buckets) = %d, want 7", len(buckets))
	}
	if got := buckets[0].Date.Format("2006-01-02"); got != "2025-03-09" {
		t.Errorf("first day = %s, want 2025-03-09 (Sunday)", got)
	}
	if got := buckets[6].Date.Format("2006-01-02"); got != "2025-03-15" {
		t.Errorf("last day = %s, want 2025-03-15 (Saturday)", got)
	}
}

func TestBucket_MonthGrid(t *testing.T) {
	// March 2025: the 1st is a Saturday, the 31st a Monday. The grid runs
	// Sun 02-23 .. Sat 04-05: six full weeks.
	buckets, err := Bucket(nil, at(t, "2025-03-15 00:00"), Month)
	if err != nil {
		t.Fatalf("Bucket(): %v", err)
	}
	if len(buckets) != 42 {
		t.Fatalf("len(buckets) = %d, want 42", len(buckets))
	}
	if got := buckets[0].Date.Format("2006-01-02"); got != "2025-02-23" {
		t.Errorf("first day = %s, want 2025-02-23", got)
	}
	if got := buckets[41].Date.Format("2006-01-02"); got != "2025-04-05" {
		t.Errorf("last day = %s, want 2025-04-05", got)
	}
	if len(buckets)%7 != 0 {
		t.Errorf("grid length %d is not whole weeks", len(buckets))
	}
}

func TestBucket_MonthIncludesAdjacentDays(t *testing.T) {
	inspections := []models.Inspection{
		ins("insp-00001", at(t, "2025-02-24 10:00")), // leading day from February
		ins("insp-00002", at(t, "2025-03-15 10:00")),
		ins("insp-00003", at(t, "2025-04-04 10:00")), // trailing day from April
		ins("insp-00004", at(t, "2025-05-01 10:00")), // outside the grid
	}

	buckets, err := Bucket(inspections, at(t, "2025-03-15 00:00"), Month)
	if err != nil {
		t.Fatalf("Bucket(): %v", err)
	}

	total := 0
	for _, b := range buckets {
		total += len(b.Inspections)
	}
	if total != 3 {
		t.Errorf("bucketed %d inspections, want 3 (outside grid dropped)", total)
	}
}

func TestBucket_MonthGridAcrossDSTChange(t *testing.T) {
	// US clocks spring forward on 2026-03-08, making it a 23-hour day.
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// March 2026: the 1st is a Sunday, the 31st a Tuesday. The grid runs
	// Sun 03-01 .. Sat 04-04: five full weeks.
	inspections := []models.Inspection{
		ins("insp-00001", time.Date(2026, 4, 4, 10, 0, 0, 0, loc)), // last visible day
	}
	buckets, err := Bucket(inspections, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), Month)
	if err != nil {
		t.Fatalf("Bucket(): %v", err)
	}

	if len(buckets) != 35 {
		t.Fatalf("len(buckets) = %d, want 35", len(buckets))
	}
	if got := buckets[34].Date.Format("2006-01-02"); got != "2026-04-04" {
		t.Errorf("last day = %s, want 2026-04-04", got)
	}
	if got := len(buckets[34].Inspections); got != 1 {
		t.Errorf("last-day inspections = %d, want 1", got)
	}
}

func TestBucket_TiesKeepInputOrder(t *testing.T) {
	same := at(t, "2025-03-10 09:00")
	inspections := []models.Inspection{
		ins("insp-00002", same),
		ins("insp-00001", same),
		ins("insp-00003", same),
	}

	buckets, err := Bucket(inspections, at(t, "2025-03-10 00:00"), Day)
	if err != nil {
		t.Fatalf("Bucket(): %v", err)
	}
	got := buckets[0].Inspections
	want := []string{"insp-00002", "insp-00001", "insp-00003"}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("ties[%d] = %s, want %s (input order)", i, got[i].ID, w)
		}
	}
}

func TestBucket_DoesNotMutateInput(t *testing.T) {
	inspections := []models.Inspection{
		ins("insp-00002", at(t, "2025-03-10 14:00")),
		ins("insp-00001", at(t, "2025-03-10 09:00")),
	}

	if _, err := Bucket(inspections, at(t, "2025-03-10 00:00"), Day); err != nil {
		t.Fatal(err)
	}
	if inspections[0].ID != "insp-00002" {
		t.Error("input slice was reordered")
	}
}

func TestBucket_UnknownGranularity(t *testing.T) {
	_, err := Bucket(nil, time.Now(), Granularity("fortnight"))
	if err == nil {
		t.Fatal("expected error for unknown granularity")
	}
}

func TestBucket_EmptyDaysPresent(t *testing.T) {
	buckets, err := Bucket(nil, at(t, "2025-03-12 00:00"), Week)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range buckets {
		if b.Inspections != nil && len(b.Inspections) != 0 {
			t.Errorf("buckets[%d] should be empty", i)
		}
	}
}
