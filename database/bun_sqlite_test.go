package database

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drummonds/goconvert/config"
)

// setupSqliteRepo creates a throwaway sqlite-backed repository in a temp dir
func setupSqliteRepo(t *testing.T) Repository {
	t.Helper()

	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	config.Logger = Logger

	tempDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })

	cfg := config.ServerConfig{
		DatabaseType:   "sqlite",
		DatabaseDbname: filepath.Join(tempDir, "test.sqlite"),
	}
	repo := NewRepository(cfg)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestJobLifecycle(t *testing.T) {
	repo := setupSqliteRepo(t)

	job, err := repo.CreateJob(JobTypeMergePdfs, "Merging 3 PDFs")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if job.Status != JobStatusPending {
		t.Errorf("new job status = %v, want pending", job.Status)
	}

	if err := repo.UpdateJobStatus(job.ID, JobStatusRunning, "Merging"); err != nil {
		t.Fatalf("UpdateJobStatus failed: %v", err)
	}
	if err := repo.UpdateJobProgress(job.ID, 50, "Writing merged document"); err != nil {
		t.Fatalf("UpdateJobProgress failed: %v", err)
	}
	if err := repo.CompleteJob(job.ID, `{"outputs": 1}`); err != nil {
		t.Fatalf("CompleteJob failed: %v", err)
	}

	fetched, err := repo.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if fetched.Status != JobStatusCompleted {
		t.Errorf("job status = %v, want completed", fetched.Status)
	}
	if fetched.Progress != 100 {
		t.Errorf("job progress = %d, want 100", fetched.Progress)
	}
	if fetched.CompletedAt == nil {
		t.Error("completed job has nil CompletedAt")
	}
}

func TestJobErrorState(t *testing.T) {
	repo := setupSqliteRepo(t)

	job, err := repo.CreateJob(JobTypeExcludePages, "Excluding pages")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if err := repo.UpdateJobError(job.ID, "cannot exclude all pages"); err != nil {
		t.Fatalf("UpdateJobError failed: %v", err)
	}

	fetched, err := repo.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if fetched.Status != JobStatusFailed {
		t.Errorf("job status = %v, want failed", fetched.Status)
	}
	if fetched.Error != "cannot exclude all pages" {
		t.Errorf("job error = %q", fetched.Error)
	}
}

func TestGetActiveAndRecentJobs(t *testing.T) {
	repo := setupSqliteRepo(t)

	running, err := repo.CreateJob(JobTypePdfToImages, "Rasterizing")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	repo.UpdateJobStatus(running.ID, JobStatusRunning, "Rasterizing")

	done, err := repo.CreateJob(JobTypeConvertImageFormat, "Converting")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	repo.CompleteJob(done.ID, "")

	active, err := repo.GetActiveJobs()
	if err != nil {
		t.Fatalf("GetActiveJobs failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != running.ID {
		t.Errorf("active jobs = %v, want just the running one", active)
	}

	recent, err := repo.GetRecentJobs(10, 0)
	if err != nil {
		t.Fatalf("GetRecentJobs failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent jobs count = %d, want 2", len(recent))
	}
}

func TestOutputRoundTrip(t *testing.T) {
	repo := setupSqliteRepo(t)

	job, err := repo.CreateJob(JobTypeImagesToPdf, "Packaging images")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	outputID, err := CalculateUUID(time.Now())
	if err != nil {
		t.Fatalf("CalculateUUID failed: %v", err)
	}
	output := &Output{
		ID:        outputID.String(),
		JobID:     job.ID,
		Name:      "converted.pdf",
		Path:      "/tmp/outputs/converted.pdf",
		SizeBytes: 12345,
		MediaType: "application/pdf",
		CreatedAt: time.Now(),
	}
	if err := repo.SaveOutput(output); err != nil {
		t.Fatalf("SaveOutput failed: %v", err)
	}

	fetched, err := repo.GetOutput(output.ID)
	if err != nil {
		t.Fatalf("GetOutput failed: %v", err)
	}
	if fetched.Name != "converted.pdf" || fetched.JobID != job.ID {
		t.Errorf("fetched output = %+v", fetched)
	}

	byJob, err := repo.GetOutputsByJob(job.ID)
	if err != nil {
		t.Fatalf("GetOutputsByJob failed: %v", err)
	}
	if len(byJob) != 1 {
		t.Errorf("outputs by job = %d, want 1", len(byJob))
	}
}

func TestDeleteExpiredOutputs(t *testing.T) {
	repo := setupSqliteRepo(t)

	job, err := repo.CreateJob(JobTypeMergePdfs, "Merging")
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}

	oldID, _ := CalculateUUID(time.Now().Add(-48 * time.Hour))
	newID, _ := CalculateUUID(time.Now())
	old := &Output{ID: oldID.String(), JobID: job.ID, Name: "merged.pdf",
		Path: "/tmp/outputs/old.pdf", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &Output{ID: newID.String(), JobID: job.ID, Name: "merged.pdf",
		Path: "/tmp/outputs/new.pdf", CreatedAt: time.Now()}
	if err := repo.SaveOutput(old); err != nil {
		t.Fatalf("SaveOutput(old) failed: %v", err)
	}
	if err := repo.SaveOutput(fresh); err != nil {
		t.Fatalf("SaveOutput(fresh) failed: %v", err)
	}

	deleted, err := repo.DeleteExpiredOutputs(24 * time.Hour)
	if err != nil {
		t.Fatalf("DeleteExpiredOutputs failed: %v", err)
	}
	if len(deleted) != 1 || deleted[0].Path != "/tmp/outputs/old.pdf" {
		t.Errorf("deleted = %v, want just the 48h-old output", deleted)
	}

	remaining, err := repo.GetRecentOutputs(10)
	if err != nil {
		t.Fatalf("GetRecentOutputs failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Path != "/tmp/outputs/new.pdf" {
		t.Errorf("remaining = %v, want just the fresh output", remaining)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	repo := setupSqliteRepo(t)

	cfg := config.ServerConfig{
		ListenAddrPort:  "8000",
		TempPath:        "/tmp/goconvert/temp",
		OutputPath:      "/tmp/goconvert/output",
		OutputRetention: 24,
		CleanupInterval: 30,
		MaxUploadMB:     100,
		Renderer:        "fitz",
	}
	WriteConfigToDB(cfg, repo)

	fetched, err := FetchConfigFromDB(repo)
	if err != nil {
		t.Fatalf("FetchConfigFromDB failed: %v", err)
	}
	if fetched.OutputPath != cfg.OutputPath || fetched.Renderer != "fitz" {
		t.Errorf("fetched config = %+v", fetched)
	}

	// Saving again overwrites the single row
	cfg.Renderer = "pdfium"
	WriteConfigToDB(cfg, repo)
	fetched, err = FetchConfigFromDB(repo)
	if err != nil {
		t.Fatalf("FetchConfigFromDB after update failed: %v", err)
	}
	if fetched.Renderer != "pdfium" {
		t.Errorf("renderer after update = %q, want pdfium", fetched.Renderer)
	}
}
