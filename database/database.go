package database

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/drummonds/goconvert/config"
	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Output is one converted file waiting in the output directory for download
type Output struct {
	ID        string    `json:"id"` // ULID as string
	JobID     ulid.ULID `json:"jobId"`
	Name      string    `json:"name"` // user-visible download filename
	Path      string    `json:"-"`    // full path on disk
	SizeBytes int64     `json:"sizeBytes"`
	MediaType string    `json:"mediaType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository defines database operations
type Repository interface {
	Close() error
	SaveConfig(cfg *config.ServerConfig) error
	GetConfig() (*config.ServerConfig, error)
	// Job tracking methods
	CreateJob(jobType JobType, message string) (*Job, error)
	UpdateJobProgress(jobID ulid.ULID, progress int, currentStep string) error
	UpdateJobStatus(jobID ulid.ULID, status JobStatus, message string) error
	UpdateJobError(jobID ulid.ULID, errorMsg string) error
	CompleteJob(jobID ulid.ULID, result string) error
	GetJob(jobID ulid.ULID) (*Job, error)
	GetRecentJobs(limit, offset int) ([]Job, error)
	GetActiveJobs() ([]Job, error)
	DeleteOldJobs(olderThan time.Duration) (int, error)
	// Output file methods
	SaveOutput(output *Output) error
	GetOutput(id string) (*Output, error)
	GetOutputsByJob(jobID ulid.ULID) ([]Output, error)
	GetRecentOutputs(limit int) ([]Output, error)
	DeleteOutput(id string) error
	DeleteExpiredOutputs(olderThan time.Duration) ([]Output, error)
}

// FetchConfigFromDB returns the stored server configuration
func FetchConfigFromDB(db Repository) (config.ServerConfig, error) {
	cfg, err := db.GetConfig()
	if err != nil {
		return config.ServerConfig{}, err
	}
	return *cfg, nil
}

// WriteConfigToDB persists the live configuration so a restart keeps the
// same working directories
func WriteConfigToDB(serverConfig config.ServerConfig, db Repository) {
	err := db.SaveConfig(&serverConfig)
	if err != nil {
		Logger.Error("Unable to write config to database", "error", err)
	}
}

// CalculateUUID generates a ULID for the given time
func CalculateUUID(time time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.UnixNano())), 0)
	newULID, err := ulid.New(ulid.Timestamp(time), entropy)
	if err != nil {
		return newULID, err
	}
	return newULID, nil
}
