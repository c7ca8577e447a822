package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/systemhause/hause/internal/db"
	"github.com/systemhause/hause/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	registerRoutes(router, gdb, nil)
	return router, gdb
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func registerTestProperty(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/properties", map[string]interface{}{
		"address":   "123 Main St",
		"community": "Willow Creek",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register property: status = %d: %s", w.Code, w.Body.String())
	}
	var prop struct {
		ID string `json:"ID"`
	}
	decode(t, w, &prop)
	if prop.ID == "" {
		t.Fatal("register property: empty ID")
	}
	return prop.ID
}

func scheduleTestInspection(t *testing.T, router *gin.Engine, propertyID, insType string) string {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/inspections", map[string]interface{}{
		"property_id": propertyID,
		"type":        insType,
		"at":          time.Now().AddDate(0, 0, 1).Format(time.RFC3339),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("schedule inspection: status = %d: %s", w.Code, w.Body.String())
	}
	var ins struct {
		ID string `json:"ID"`
	}
	decode(t, w, &ins)
	return ins.ID
}

func TestStart_NilDB(t *testing.T) {
	err := Start(context.Background(), StartOpts{DB: nil})
	if err == nil {
		t.Fatal("expected error for nil db")
	}
	if !strings.Contains(err.Error(), "db is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "db is required")
	}
}

func TestRegisterProperty(t *testing.T) {
	router, _ := testRouter(t)
	id := registerTestProperty(t, router)

	w := doJSON(t, router, "GET", "/api/properties/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var prop struct {
		Stage  string `json:"Stage"`
		Status string `json:"Status"`
	}
	decode(t, w, &prop)
	if prop.Stage != "pre-rock" || prop.Status != "pending" {
		t.Errorf("new property = %s/%s, want pre-rock/pending", prop.Stage, prop.Status)
	}
}

func TestRegisterPropertyMissingAddress(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, "POST", "/api/properties", map[string]interface{}{
		"community": "Willow Creek",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestInspectionLifecycleAdvancesStage(t *testing.T) {
	router, _ := testRouter(t)
	propID := registerTestProperty(t, router)
	insID := scheduleTestInspection(t, router, propID, "pre-rock")

	if w := doJSON(t, router, "POST", "/api/inspections/"+insID+"/start", nil); w.Code != http.StatusOK {
		t.Fatalf("start: status = %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, router, "POST", "/api/inspections/"+insID+"/pass", nil); w.Code != http.StatusOK {
		t.Fatalf("pass: status = %d: %s", w.Code, w.Body.String())
	}

	w := doJSON(t, router, "GET", "/api/properties/"+propID, nil)
	var prop struct {
		Stage  string `json:"Stage"`
		Status string `json:"Status"`
	}
	decode(t, w, &prop)
	if prop.Stage != "poly-test" || prop.Status != "pending" {
		t.Errorf("after pass = %s/%s, want poly-test/pending", prop.Stage, prop.Status)
	}
}

func TestScheduleWrongTypeForStage(t *testing.T) {
	router, _ := testRouter(t)
	propID := registerTestProperty(t, router)

	w := doJSON(t, router, "POST", "/api/inspections", map[string]interface{}{
		"property_id": propID,
		"type":        "final",
		"at":          time.Now().AddDate(0, 0, 1).Format(time.RFC3339),
	})
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409: %s", w.Code, w.Body.String())
	}
}

func TestFailWithoutIssues(t *testing.T) {
	router, _ := testRouter(t)
	propID := registerTestProperty(t, router)
	insID := scheduleTestInspection(t, router, propID, "pre-rock")
	doJSON(t, router, "POST", "/api/inspections/"+insID+"/start", nil)

	w := doJSON(t, router, "POST", "/api/inspections/"+insID+"/fail", map[string]interface{}{
		"issues": []interface{}{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCorrectionFlowOverHTTP(t *testing.T) {
	router, _ := testRouter(t)
	propID := registerTestProperty(t, router)
	insID := scheduleTestInspection(t, router, propID, "pre-rock")
	doJSON(t, router, "POST", "/api/inspections/"+insID+"/start", nil)

	w := doJSON(t, router, "POST", "/api/inspections/"+insID+"/fail", map[string]interface{}{
		"issues": []map[string]interface{}{
			{"description": "cracked stud in garage wall", "severity": "high"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("fail: status = %d: %s", w.Code, w.Body.String())
	}
	var failed struct {
		Issues []struct {
			ID uint `json:"ID"`
		} `json:"Issues"`
	}
	w = doJSON(t, router, "GET", "/api/inspections/"+insID, nil)
	decode(t, w, &failed)
	if len(failed.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(failed.Issues))
	}

	w = doJSON(t, router, "POST", "/api/corrections", map[string]interface{}{
		"property_id":   propID,
		"inspection_id": insID,
		"issue_id":      failed.Issues[0].ID,
		"submitted_by":  "builder-7",
		"notes":         "replaced the stud, photos attached",
		"photo_urls":    []string{"https://cdn.example.com/fix.jpg"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d: %s", w.Code, w.Body.String())
	}
	var corr struct {
		ID string `json:"ID"`
	}
	decode(t, w, &corr)

	w = doJSON(t, router, "POST", "/api/corrections/"+corr.ID+"/review", map[string]interface{}{
		"decision":    "approve",
		"reviewer_id": "admin-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("review: status = %d: %s", w.Code, w.Body.String())
	}

	// Second review of the same request conflicts.
	w = doJSON(t, router, "POST", "/api/corrections/"+corr.ID+"/review", map[string]interface{}{
		"decision":    "reject",
		"reviewer_id": "admin-2",
		"notes":       "changed my mind",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("double review: status = %d, want 409: %s", w.Code, w.Body.String())
	}

	// Approval booked a follow-up inspection.
	w = doJSON(t, router, "GET", fmt.Sprintf("/api/inspections?property_id=%s&type=follow-up", propID), nil)
	var list struct {
		Inspections []struct {
			ID string `json:"ID"`
		} `json:"inspections"`
	}
	decode(t, w, &list)
	if len(list.Inspections) != 1 {
		t.Errorf("follow-ups = %d, want 1", len(list.Inspections))
	}
}

func TestCalendarEndpoint(t *testing.T) {
	router, _ := testRouter(t)
	propID := registerTestProperty(t, router)
	scheduleTestInspection(t, router, propID, "pre-rock")

	w := doJSON(t, router, "GET", "/api/calendar?granularity=week", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Days []struct {
			Date time.Time `json:"Date"`
		} `json:"days"`
	}
	decode(t, w, &resp)
	if len(resp.Days) != 7 {
		t.Errorf("days = %d, want 7", len(resp.Days))
	}
}

func TestCalendarBadGranularity(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, "GET", "/api/calendar?granularity=fortnight", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	router, _ := testRouter(t)
	registerTestProperty(t, router)

	w := doJSON(t, router, "GET", "/api/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var summary SummaryData
	decode(t, w, &summary)
	if len(summary.Stages) != 1 || summary.Stages[0].Stage != "pre-rock" {
		t.Errorf("stages = %+v, want one pre-rock entry", summary.Stages)
	}
}

func TestSummaryCountsTodayByLocalDay(t *testing.T) {
	_, gdb := testRouter(t)

	if err := gdb.Create(&models.Property{ID: "prop-00001", Address: "12 Oak St", Community: "Oak Ridge"}).Error; err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	todayEarly := time.Date(now.Year(), now.Month(), now.Day(), 0, 15, 0, 0, now.Location())
	lateYesterday := todayEarly.Add(-30 * time.Minute)
	for _, ins := range []models.Inspection{
		{ID: "insp-00001", PropertyID: "prop-00001", Type: "pre-rock", Status: "scheduled", ScheduledAt: todayEarly},
		{ID: "insp-00002", PropertyID: "prop-00001", Type: "pre-rock", Status: "scheduled", ScheduledAt: lateYesterday},
	} {
		if err := gdb.Create(&ins).Error; err != nil {
			t.Fatal(err)
		}
	}

	summary, err := Summary(gdb)
	if err != nil {
		t.Fatalf("Summary(): %v", err)
	}
	// The local day boundary splits these two: 00:15 today counts, 23:45
	// yesterday does not.
	if summary.InspectionsToday != 1 {
		t.Errorf("InspectionsToday = %d, want 1", summary.InspectionsToday)
	}
}

func TestPropertyNotFound(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, "GET", "/api/properties/prop-zzzzz", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestUpdateRejectsStage(t *testing.T) {
	router, _ := testRouter(t)
	propID := registerTestProperty(t, router)

	w := doJSON(t, router, "PATCH", "/api/properties/"+propID, map[string]interface{}{
		"stage": "final",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestSSEEndpoint(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, "GET", "/api/events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, want text/event-stream", ct)
	}
}

func TestUnknownRoute(t *testing.T) {
	router, _ := testRouter(t)
	w := doJSON(t, router, "GET", "/api/nonexistent", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
