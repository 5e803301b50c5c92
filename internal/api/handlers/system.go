package handlers

import (
	"net/http"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/response"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/scheduler"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

// VersionResponse represents the version check response.
type VersionResponse struct {
	AppVersion string `json:"app_version"`
}

// Version handles GET requests for the running application version.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionResponse
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, VersionResponse{AppVersion: h.systemService.CheckVersion()})
}

// JobsResponse lists the background jobs.
type JobsResponse struct {
	Jobs []scheduler.JobStatus `json:"jobs"`
}

// Jobs handles GET requests for the state of the background jobs, including
// whether a pass is currently running.
//
// Endpoint: GET /api/system/jobs
// Response: 200 OK with JobsResponse
func (h *SystemHandler) Jobs(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, JobsResponse{Jobs: h.systemService.JobStatuses()})
}
