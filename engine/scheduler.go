package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	database "github.com/drummonds/goconvert/database"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// InitializeSchedules starts all the cron jobs (currently just one)
func (serverHandler *ServerHandler) InitializeSchedules(db database.Repository) {
	serverConfig, err := database.FetchConfigFromDB(db)
	if err != nil {
		fmt.Println("Error reading db when initializing")
	}

	// Run a cleanup pass immediately at startup in a goroutine
	Logger.Info("Running cleanup job at startup")
	go serverHandler.cleanupJobFunc(db)

	c := cron.New()
	var cleanupJob cron.Job
	cleanupJob = cron.FuncJob(func() { serverHandler.cleanupJobFunc(db) })
	cleanupJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cleanupJob) //ensure we don't kick off another if old one is still running
	c.AddJob(fmt.Sprintf("@every %dm", serverConfig.CleanupInterval), cleanupJob)
	Logger.Info("Adding Cleanup Job scheduler", "interval_minutes", serverConfig.CleanupInterval)
	c.Start()
}

// cleanupJobFunc purges expired outputs, stale job rows and orphaned temp
// files, recording the run as a job of its own
func (serverHandler *ServerHandler) cleanupJobFunc(db database.Repository) {
	// Add panic recovery to prevent entire application crash
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in cleanup job", "panic", r)
		}
	}()

	job, err := db.CreateJob(database.JobTypeCleanup, "Scheduled cleanup")
	if err != nil {
		Logger.Error("Unable to create cleanup job", "error", err)
		return
	}
	if err := db.UpdateJobStatus(job.ID, database.JobStatusRunning, "Cleaning up"); err != nil {
		Logger.Error("Failed to update cleanup job status", "error", err)
	}

	retention := time.Duration(serverHandler.ServerConfig.OutputRetention) * time.Hour

	expired, err := db.DeleteExpiredOutputs(retention)
	if err != nil {
		Logger.Error("Error deleting expired outputs", "error", err)
		db.UpdateJobError(job.ID, err.Error())
		return
	}
	for _, output := range expired {
		if err := os.Remove(output.Path); err != nil && !os.IsNotExist(err) {
			Logger.Warn("Unable to delete expired output file", "path", output.Path, "error", err)
		}
	}

	// Job rows older than twice the output retention are no longer useful
	deletedJobs, err := db.DeleteOldJobs(2 * retention)
	if err != nil {
		Logger.Error("Error deleting old jobs", "error", err)
	}

	orphans := serverHandler.removeOrphanedTempFiles(retention)

	Logger.Info("Cleanup finished", "expiredOutputs", len(expired), "deletedJobs", deletedJobs, "orphanedTempFiles", orphans)

	result, _ := json.Marshal(map[string]int{
		"expiredOutputs":    len(expired),
		"deletedJobs":       deletedJobs,
		"orphanedTempFiles": orphans,
	})
	if err := db.CompleteJob(job.ID, string(result)); err != nil {
		Logger.Error("Failed to mark cleanup job as complete", "error", err)
	}
}

// removeOrphanedTempFiles deletes temp files older than the retention window
// that are no longer referenced by the queue
func (serverHandler *ServerHandler) removeOrphanedTempFiles(retention time.Duration) int {
	serverHandler.queueMu.Lock()
	queued := make(map[string]struct{}, len(serverHandler.Queue.Files))
	for _, file := range serverHandler.Queue.Files {
		queued[file.Path] = struct{}{}
	}
	serverHandler.queueMu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-retention)
	entries, err := os.ReadDir(serverHandler.ServerConfig.TempPath)
	if err != nil {
		Logger.Warn("Unable to read temp directory", "path", serverHandler.ServerConfig.TempPath, "error", err)
		return 0
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(serverHandler.ServerConfig.TempPath, entry.Name())
		if _, stillQueued := queued[path]; stillQueued {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			Logger.Warn("Unable to delete orphaned temp file", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed
}
