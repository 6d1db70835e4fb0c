package database

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// BunJob represents the jobs table for Bun ORM
type BunJob struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID          string     `bun:"id,pk"` // ULID as string
	Type        string     `bun:"type,notnull"`
	Status      string     `bun:"status,default:'pending'"`
	Progress    int        `bun:"progress,default:0"`
	CurrentStep string     `bun:"current_step,default:''"`
	TotalSteps  int        `bun:"total_steps,default:0"`
	Message     string     `bun:"message,default:''"`
	Error       string     `bun:"error,nullzero"`
	Result      string     `bun:"result,nullzero"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	StartedAt   *time.Time `bun:"started_at,nullzero"`
	CompletedAt *time.Time `bun:"completed_at,nullzero"`
}

// ToJob converts BunJob to Job
func (bj *BunJob) ToJob() (*Job, error) {
	parsedULID, err := ulid.Parse(bj.ID)
	if err != nil {
		return nil, err
	}

	return &Job{
		ID:          parsedULID,
		Type:        JobType(bj.Type),
		Status:      JobStatus(bj.Status),
		Progress:    bj.Progress,
		CurrentStep: bj.CurrentStep,
		TotalSteps:  bj.TotalSteps,
		Message:     bj.Message,
		Error:       bj.Error,
		Result:      bj.Result,
		CreatedAt:   bj.CreatedAt,
		UpdatedAt:   bj.UpdatedAt,
		StartedAt:   bj.StartedAt,
		CompletedAt: bj.CompletedAt,
	}, nil
}

// FromJob converts Job to BunJob
func FromJob(job *Job) *BunJob {
	return &BunJob{
		ID:          job.ID.String(),
		Type:        string(job.Type),
		Status:      string(job.Status),
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		TotalSteps:  job.TotalSteps,
		Message:     job.Message,
		Error:       job.Error,
		Result:      job.Result,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}
}

// BunOutput represents the outputs table for Bun ORM
type BunOutput struct {
	bun.BaseModel `bun:"table:outputs,alias:o"`

	ID        string    `bun:"id,pk"` // ULID as string
	JobID     string    `bun:"job_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Path      string    `bun:"path,notnull,unique"`
	SizeBytes int64     `bun:"size_bytes,notnull,default:0"`
	MediaType string    `bun:"media_type,notnull,default:''"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ToOutput converts BunOutput to Output
func (bo *BunOutput) ToOutput() (*Output, error) {
	jobULID, err := ulid.Parse(bo.JobID)
	if err != nil {
		return nil, err
	}

	return &Output{
		ID:        bo.ID,
		JobID:     jobULID,
		Name:      bo.Name,
		Path:      bo.Path,
		SizeBytes: bo.SizeBytes,
		MediaType: bo.MediaType,
		CreatedAt: bo.CreatedAt,
	}, nil
}

// FromOutput converts Output to BunOutput
func FromOutput(output *Output) *BunOutput {
	return &BunOutput{
		ID:        output.ID,
		JobID:     output.JobID.String(),
		Name:      output.Name,
		Path:      output.Path,
		SizeBytes: output.SizeBytes,
		MediaType: output.MediaType,
		CreatedAt: output.CreatedAt,
	}
}

// BunServerConfig represents the server_config table for Bun ORM
type BunServerConfig struct {
	bun.BaseModel `bun:"table:server_config,alias:sc"`

	ID              int       `bun:"id,pk"`
	ListenAddrIP    string    `bun:"listen_addr_ip,default:''"`
	ListenAddrPort  string    `bun:"listen_addr_port,notnull,default:'8000'"`
	TempPath        string    `bun:"temp_path,notnull,default:''"`
	OutputPath      string    `bun:"output_path,notnull,default:''"`
	OutputRetention int       `bun:"output_retention,notnull,default:24"`
	CleanupInterval int       `bun:"cleanup_interval,notnull,default:30"`
	MaxUploadMB     int       `bun:"max_upload_mb,notnull,default:100"`
	Renderer        string    `bun:"renderer,notnull,default:'pdfium'"`
	PDFServiceURL   string    `bun:"pdf_service_url,default:''"`
	UseReverseProxy bool      `bun:"use_reverse_proxy,notnull,default:false"`
	BaseURL         string    `bun:"base_url,default:''"`
	JobHistoryCount int       `bun:"job_history_count,notnull,default:20"`
	ServerAPIURL    string    `bun:"server_api_url,default:''"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
