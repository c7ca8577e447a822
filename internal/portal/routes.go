package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/systemhause/hause/internal/activity"
	"github.com/systemhause/hause/internal/assign"
	"github.com/systemhause/hause/internal/calendar"
	"github.com/systemhause/hause/internal/correction"
	"github.com/systemhause/hause/internal/inspection"
	"github.com/systemhause/hause/internal/models"
	"github.com/systemhause/hause/internal/notify"
	"github.com/systemhause/hause/internal/property"
	"gorm.io/gorm"
)

// registerRoutes sets up all portal API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, notifiers []notify.Notifier) {
	api := router.Group("/api")

	api.GET("/summary", handleSummary(db))

	api.GET("/properties", handlePropertyList(db))
	api.POST("/properties", handlePropertyRegister(db))
	api.GET("/properties/:id", handlePropertyDetail(db))
	api.PATCH("/properties/:id", handlePropertyUpdate(db))
	api.GET("/properties/:id/activity", handlePropertyActivity(db))
	api.POST("/properties/:id/documents", handleDocumentAdd(db))
	api.POST("/properties/:id/photos", handlePhotoAdd(db))

	api.GET("/inspections", handleInspectionList(db))
	api.POST("/inspections", handleInspectionSchedule(db))
	api.GET("/inspections/:id", handleInspectionDetail(db))
	api.POST("/inspections/:id/start", handleInspectionStart(db))
	api.POST("/inspections/:id/pass", handleInspectionPass(db))
	api.POST("/inspections/:id/fail", handleInspectionFail(db, notifiers))
	api.POST("/inspections/:id/cancel", handleInspectionCancel(db))

	api.GET("/corrections", handleCorrectionList(db))
	api.POST("/corrections", handleCorrectionSubmit(db))
	api.GET("/corrections/:id", handleCorrectionDetail(db))
	api.POST("/corrections/:id/review", handleCorrectionReview(db, notifiers))
	api.POST("/corrections/bulk-approve", handleCorrectionBulkApprove(db))

	api.GET("/calendar", handleCalendar(db))
	api.POST("/assignments/auto", handleAutoAssign(db))
	api.GET("/activity", handleActivity(db))

	api.GET("/events", handleSSEStub())
}

// abortWithError maps a service error onto an HTTP status.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, property.ErrValidation), errors.Is(err, correction.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, property.ErrInvalidStageTransition), errors.Is(err, correction.ErrAlreadyReviewed):
		status = http.StatusConflict
	case errors.Is(err, correction.ErrNotEligible):
		status = http.StatusUnprocessableEntity
	case strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
	case strings.Contains(err.Error(), "invalid status transition"):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func handleSummary(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := Summary(db)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func handlePropertyList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		props, err := property.List(db, property.ListFilters{
			Community: c.Query("community"),
			Stage:     c.Query("stage"),
			Status:    c.Query("status"),
			BuilderID: c.Query("builder_id"),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"properties": props})
	}
}

type registerRequest struct {
	Address      string `json:"address" binding:"required"`
	Community    string `json:"community" binding:"required"`
	PlanNumber   string `json:"plan_number"`
	BuilderID    string `json:"builder_id"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	Notes        string `json:"notes"`
	ClosingDate  string `json:"closing_date"` // YYYY-MM-DD
}

func handlePropertyRegister(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		opts := property.RegisterOpts{
			Address:      req.Address,
			Community:    req.Community,
			PlanNumber:   req.PlanNumber,
			BuilderID:    req.BuilderID,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
			Notes:        req.Notes,
		}
		if req.ClosingDate != "" {
			closing, err := time.Parse("2006-01-02", req.ClosingDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "closing_date must be YYYY-MM-DD"})
				return
			}
			opts.ClosingDate = &closing
		}

		prop, err := property.Register(db, opts)
		if err != nil {
			abortWithError(c, err)
			return
		}
		activity.Record(db, prop.ID, activity.KindPropertyRegistered, req.ContactName,
			"property registered at "+prop.Address, "")
		c.JSON(http.StatusCreated, prop)
	}
}

func handlePropertyDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		prop, err := property.Get(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, prop)
	}
}

func handlePropertyUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := property.Update(db, c.Param("id"), updates); err != nil {
			abortWithError(c, err)
			return
		}
		prop, err := property.Get(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, prop)
	}
}

func handlePropertyActivity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		entries, err := activity.ForProperty(db, c.Param("id"), limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"activity": entries})
	}
}

type documentRequest struct {
	Name       string `json:"name" binding:"required"`
	Kind       string `json:"kind"`
	URL        string `json:"url" binding:"required"`
	UploadedBy string `json:"uploaded_by"`
}

func handleDocumentAdd(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req documentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		doc, err := property.AddDocument(db, c.Param("id"), req.Name, req.Kind, req.URL, req.UploadedBy)
		if err != nil {
			abortWithError(c, err)
			return
		}
		activity.Record(db, c.Param("id"), activity.KindDocumentAdded, req.UploadedBy,
			"document added: "+req.Name, req.URL)
		c.JSON(http.StatusCreated, doc)
	}
}

type photoRequest struct {
	URL     string `json:"url" binding:"required"`
	Caption string `json:"caption"`
}

func handlePhotoAdd(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req photoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		photo, err := property.AddPhoto(db, c.Param("id"), req.URL, req.Caption)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, photo)
	}
}

func handleInspectionList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		inspections, err := inspection.List(db, inspection.ListFilters{
			PropertyID:    c.Query("property_id"),
			Status:        c.Query("status"),
			Type:          c.Query("type"),
			InspectorName: c.Query("inspector"),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"inspections": inspections})
	}
}

type scheduleRequest struct {
	PropertyID     string    `json:"property_id" binding:"required"`
	Type           string    `json:"type" binding:"required"`
	At             time.Time `json:"at" binding:"required"`
	InspectorName  string    `json:"inspector_name"`
	InspectorPhone string    `json:"inspector_phone"`
	InspectorEmail string    `json:"inspector_email"`
	Notes          string    `json:"notes"`
}

func handleInspectionSchedule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ins, err := inspection.Schedule(db, inspection.ScheduleOpts{
			PropertyID:     req.PropertyID,
			Type:           req.Type,
			At:             req.At,
			InspectorName:  req.InspectorName,
			InspectorPhone: req.InspectorPhone,
			InspectorEmail: req.InspectorEmail,
			Notes:          req.Notes,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ins)
	}
}

func handleInspectionDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ins, err := inspection.Get(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ins)
	}
}

func handleInspectionStart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ins, err := inspection.Start(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ins)
	}
}

type passRequest struct {
	ReportURL string `json:"report_url"`
	Notes     string `json:"notes"`
}

func handleInspectionPass(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req passRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		ins, err := inspection.Pass(db, c.Param("id"), req.ReportURL, req.Notes)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ins)
	}
}

type failRequest struct {
	Issues []struct {
		Description string   `json:"description"`
		Severity    string   `json:"severity"`
		Location    string   `json:"location"`
		PhotoURLs   []string `json:"photo_urls"`
	} `json:"issues"`
}

func handleInspectionFail(db *gorm.DB, notifiers []notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req failRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		issues := make([]inspection.IssueInput, len(req.Issues))
		for i, iss := range req.Issues {
			issues[i] = inspection.IssueInput{
				Description: iss.Description,
				Severity:    iss.Severity,
				Location:    iss.Location,
				PhotoURLs:   iss.PhotoURLs,
			}
		}
		ins, err := inspection.Fail(db, c.Param("id"), issues)
		if err != nil {
			abortWithError(c, err)
			return
		}
		go notify.Fanout(context.Background(), notifiers, notify.Event{
			Kind:       "inspection_failed",
			PropertyID: ins.PropertyID,
			Address:    propertyAddress(db, ins.PropertyID),
			Summary:    fmt.Sprintf("%s inspection failed with %d issue(s)", ins.Type, len(issues)),
		})
		c.JSON(http.StatusOK, ins)
	}
}

// propertyAddress looks up an address for notification text. Empty on error;
// the notification goes out either way.
func propertyAddress(db *gorm.DB, propertyID string) string {
	var prop models.Property
	if err := db.Select("address").Where("id = ?", propertyID).First(&prop).Error; err != nil {
		return ""
	}
	return prop.Address
}

func handleInspectionCancel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ins, err := inspection.Cancel(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, ins)
	}
}

func handleCorrectionList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqs, err := correction.List(db, correction.ListFilters{
			PropertyID: c.Query("property_id"),
			Status:     c.Query("status"),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"corrections": reqs})
	}
}

type submitRequest struct {
	PropertyID   string   `json:"property_id" binding:"required"`
	InspectionID string   `json:"inspection_id" binding:"required"`
	IssueID      uint     `json:"issue_id" binding:"required"`
	SubmittedBy  string   `json:"submitted_by"`
	Notes        string   `json:"notes"`
	PhotoURLs    []string `json:"photo_urls"`
}

func handleCorrectionSubmit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := correction.Submit(db, correction.SubmitOpts{
			PropertyID:   req.PropertyID,
			InspectionID: req.InspectionID,
			IssueID:      req.IssueID,
			SubmittedBy:  req.SubmittedBy,
			Notes:        req.Notes,
			PhotoURLs:    req.PhotoURLs,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func handleCorrectionDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := correction.Get(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

type reviewRequest struct {
	Decision   string `json:"decision" binding:"required"`
	ReviewerID string `json:"reviewer_id" binding:"required"`
	Notes      string `json:"notes"`
}

func handleCorrectionReview(db *gorm.DB, notifiers []notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reviewed, err := correction.Review(db, c.Param("id"), req.Decision, req.ReviewerID, req.Notes, followUpScheduler(db))
		if err != nil {
			abortWithError(c, err)
			return
		}
		go notify.Fanout(context.Background(), notifiers, notify.Event{
			Kind:       "correction_" + reviewed.Status,
			PropertyID: reviewed.PropertyID,
			Address:    propertyAddress(db, reviewed.PropertyID),
			Summary:    fmt.Sprintf("correction request %s %s by %s", reviewed.ID, reviewed.Status, req.ReviewerID),
		})
		c.JSON(http.StatusOK, reviewed)
	}
}

type bulkApproveRequest struct {
	IDs        []string `json:"ids" binding:"required"`
	ReviewerID string   `json:"reviewer_id" binding:"required"`
}

func handleCorrectionBulkApprove(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkApproveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		approved, err := correction.BulkApprove(db, req.IDs, req.ReviewerID, followUpScheduler(db))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"approved": approved})
	}
}

// followUpScheduler adapts the inspection scheduler to the correction
// workflow's collaborator shape.
func followUpScheduler(db *gorm.DB) correction.FollowUpScheduler {
	return func(failedInspectionID string, at time.Time) error {
		_, err := inspection.ScheduleFollowUp(db, failedInspectionID, at)
		return err
	}
}

func handleCalendar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		g := calendar.Granularity(c.DefaultQuery("granularity", "month"))

		date := time.Now()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			date = parsed
		}

		inspections, err := inspection.List(db, inspection.ListFilters{
			Status:        c.Query("status"),
			InspectorName: c.Query("inspector"),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}

		buckets, err := calendar.Bucket(inspections, date, g)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": buckets})
	}
}

func handleAutoAssign(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		made, err := assign.AutoAssign(db)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignments": made})
	}
}

func handleActivity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		entries, err := activity.Recent(db, limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"activity": entries})
	}
}
