package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/response"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
)

// ReportHandler handles HTTP requests for watchlist performance reports.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the reportService.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler with the provided service dependency.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GenerateReportResponse is returned after a report has been generated and stored.
type GenerateReportResponse struct {
	Message string       `json:"message"`
	Report  model.Report `json:"report"`
}

// ReportsResponse wraps the reports of a watchlist.
type ReportsResponse struct {
	Reports []model.Report `json:"reports"`
}

// ReportResponse wraps a single stored report.
type ReportResponse struct {
	Report model.Report `json:"report"`
}

// GenerateReport handles POST requests to generate and persist a report for a watchlist.
//
// Endpoint: POST /api/report/generate/{uuid}
// Response: 201 Created with GenerateReportResponse
// Error: 400 Bad Request if the ID is invalid (validated by middleware) or the
// watchlist window is inverted
// Error: 404 Not Found if the watchlist does not exist
// Error: 500 Internal Server Error if generation fails
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	watchlistID := chi.URLParam(r, "uuid")

	report, err := h.reportService.GenerateReport(r.Context(), watchlistID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGenerateReport)
		return
	}

	response.RespondJSON(w, http.StatusCreated, GenerateReportResponse{
		Message: "Report generated successfully",
		Report:  report,
	})
}

// WatchlistReports handles GET requests for the stored reports of a watchlist, newest first.
//
// Endpoint: GET /api/report/watchlist/{uuid}
// Response: 200 OK with ReportsResponse
// Error: 404 Not Found if the watchlist does not exist
func (h *ReportHandler) WatchlistReports(w http.ResponseWriter, r *http.Request) {
	watchlistID := chi.URLParam(r, "uuid")

	reports, err := h.reportService.ListReports(r.Context(), watchlistID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveReports)
		return
	}

	response.RespondJSON(w, http.StatusOK, ReportsResponse{Reports: reports})
}

// GetReport handles GET requests for a single stored report.
//
// Endpoint: GET /api/report/{uuid}
// Response: 200 OK with ReportResponse
// Error: 404 Not Found if the report does not exist
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "uuid")

	report, err := h.reportService.GetReport(r.Context(), reportID)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveReports)
		return
	}

	response.RespondJSON(w, http.StatusOK, ReportResponse{Report: report})
}
