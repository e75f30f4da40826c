package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
)

// patientMetaRequest is the optional demographic block on analysis requests.
type patientMetaRequest struct {
	Age    *int   `json:"age"`
	Gender string `json:"gender"`
}

type analyzeRequest struct {
	Text      string              `json:"text" binding:"required"`
	PatientID string              `json:"patient_id"`
	Patient   *patientMetaRequest `json:"patient"`
}

type evaluateRequest struct {
	Values    map[string]float64  `json:"values" binding:"required"`
	PatientID string              `json:"patient_id"`
	Patient   *patientMetaRequest `json:"patient"`
}

type analysisResponse struct {
	ReportID string               `json:"report_id,omitempty"`
	Panels   []domain.PanelResult `json:"panels"`
	Summary  *domain.Summary      `json:"summary"`
}

type bookingRequest struct {
	PatientID   string    `json:"patient_id" binding:"required"`
	LabTestID   string    `json:"lab_test_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// resolveMeta fills in configured defaults for missing or invalid demographics.
func (s *Server) resolveMeta(req *patientMetaRequest) domain.PatientMeta {
	meta := domain.PatientMeta{
		Age:    s.cfg.Analysis.DefaultAge,
		Gender: s.cfg.Analysis.DefaultGender,
	}
	if req == nil {
		return meta
	}
	if req.Age != nil && *req.Age >= 0 && *req.Age <= 120 {
		meta.Age = *req.Age
	}
	if g := domain.Gender(req.Gender); g.IsValid() {
		meta.Gender = g
	}
	return meta
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	if s.healthCheck != nil {
		if err := s.healthCheck(c.Request.Context()); err != nil {
			s.log.WithError(err).Warn("health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// handleAnalyze runs the free-text analysis pipeline and, when a patient ID
// is supplied and a report store is wired, persists the resulting report.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body", err.Error())
		return
	}
	if len(req.Text) > s.cfg.Analysis.MaxTextSize {
		respondError(c, http.StatusRequestEntityTooLarge, domain.ErrCodeInvalidInput,
			"report text exceeds the configured size limit", "")
		return
	}

	meta := s.resolveMeta(req.Patient)
	panels, err := s.analysis.Analyze(c.Request.Context(), req.Text, meta)
	if err != nil {
		s.log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("analysis failed")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeAnalysis, "analysis failed", "")
		return
	}

	summary := s.summary.Summarize(panels)
	resp := analysisResponse{Panels: panels, Summary: summary}

	if req.PatientID != "" && s.reports != nil {
		report := &domain.LabReport{
			PatientID: req.PatientID,
			Panels:    panels,
			Summary:   summary,
			Status:    domain.ReportCompleted,
		}
		if err := s.reports.SaveReport(c.Request.Context(), report); err != nil {
			s.log.WithError(err).Error("failed to persist lab report")
			respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to save report", "")
			return
		}
		resp.ReportID = report.ID
	}

	c.JSON(http.StatusOK, resp)
}

// handleEvaluate classifies pre-extracted numeric values keyed by test code.
func (s *Server) handleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body", err.Error())
		return
	}
	if len(req.Values) == 0 {
		respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "values must not be empty", "")
		return
	}

	meta := s.resolveMeta(req.Patient)
	panels, err := s.analysis.EvaluateValues(c.Request.Context(), req.Values, meta)
	if err != nil {
		s.log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("evaluation failed")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeAnalysis, "evaluation failed", "")
		return
	}

	summary := s.summary.Summarize(panels)
	resp := analysisResponse{Panels: panels, Summary: summary}

	if req.PatientID != "" && s.reports != nil {
		report := &domain.LabReport{
			PatientID: req.PatientID,
			Panels:    panels,
			Summary:   summary,
			Status:    domain.ReportCompleted,
		}
		if err := s.reports.SaveReport(c.Request.Context(), report); err != nil {
			s.log.WithError(err).Error("failed to persist lab report")
			respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to save report", "")
			return
		}
		resp.ReportID = report.ID
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetReport returns one persisted report by ID.
func (s *Server) handleGetReport(c *gin.Context) {
	if s.reports == nil {
		respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "report storage is not enabled", "")
		return
	}

	report, err := s.reports.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "report not found", "")
			return
		}
		s.log.WithError(err).Error("failed to load report")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load report", "")
		return
	}

	c.JSON(http.StatusOK, report)
}

// handleGetPatientReports lists a patient's reports, newest first.
func (s *Server) handleGetPatientReports(c *gin.Context) {
	if s.reports == nil {
		respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "report storage is not enabled", "")
		return
	}

	reports, err := s.reports.GetReportsByPatient(c.Request.Context(), c.Param("patientID"))
	if err != nil {
		s.log.WithError(err).Error("failed to list reports")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list reports", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// handleGetReferences exposes the reference catalog for one panel. Read-only
// admin surface; catalog writes go through migrations.
func (s *Server) handleGetReferences(c *gin.Context) {
	panel := domain.Panel(c.Param("panel"))
	if !panel.IsValid() {
		respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "unknown panel", string(panel))
		return
	}

	refs, err := s.catalog.GetReferencesByPanel(c.Request.Context(), panel)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"panel": panel}).Error("failed to load references")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeCatalog, "failed to load references", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"panel": panel, "references": refs})
}

// handleListLabTests returns the orderable test catalog.
func (s *Server) handleListLabTests(c *gin.Context) {
	if s.labTests == nil {
		respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "test catalog is not enabled", "")
		return
	}

	tests, err := s.labTests.ListLabTests(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("failed to list lab tests")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list lab tests", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tests": tests, "count": len(tests)})
}

// handleCreateBooking books a catalog test for a patient.
func (s *Server) handleCreateBooking(c *gin.Context) {
	if s.labTests == nil {
		respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "bookings are not enabled", "")
		return
	}

	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body", err.Error())
		return
	}

	booking := &domain.LabBooking{
		PatientID:   req.PatientID,
		LabTestID:   req.LabTestID,
		ScheduledAt: req.ScheduledAt,
	}
	if err := s.labTests.CreateBooking(c.Request.Context(), booking); err != nil {
		s.log.WithError(err).Error("failed to create booking")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to create booking", "")
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// handleGetPatientBookings lists a patient's bookings.
func (s *Server) handleGetPatientBookings(c *gin.Context) {
	if s.labTests == nil {
		respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "bookings are not enabled", "")
		return
	}

	bookings, err := s.labTests.GetBookingsByPatient(c.Request.Context(), c.Param("patientID"))
	if err != nil {
		s.log.WithError(err).Error("failed to list bookings")
		respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list bookings", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// respondError writes the standard error envelope.
func respondError(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewAPIError(code, message, details, c.GetString("request_id")))
}
