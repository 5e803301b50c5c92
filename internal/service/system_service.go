package service

import (
	"database/sql"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/database"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/scheduler"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/version"
)

// JobLister reports the state of the background jobs.
type JobLister interface {
	Statuses() []scheduler.JobStatus
}

// SystemService handles system-related operations
type SystemService struct {
	db   *sql.DB
	jobs JobLister
}

// NewSystemService creates a new SystemService. jobs may be nil when no scheduler runs
// in the process.
func NewSystemService(db *sql.DB, jobs JobLister) *SystemService {
	return &SystemService{
		db:   db,
		jobs: jobs,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

func (s *SystemService) CheckVersion() string {
	return version.Version
}

// JobStatuses returns the status of every scheduled job, in registration order.
func (s *SystemService) JobStatuses() []scheduler.JobStatus {
	if s.jobs == nil {
		return []scheduler.JobStatus{}
	}
	return s.jobs.Statuses()
}
