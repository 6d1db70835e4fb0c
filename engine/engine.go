package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drummonds/goconvert/convert"
	"github.com/drummonds/goconvert/database"
	"github.com/oklog/ulid/v2"
)

// pendingOutput is a converted file held in memory until the whole job has
// succeeded. Nothing is written to the output directory before that point
// so a failed job never leaves partial results behind.
type pendingOutput struct {
	Name      string // user-visible download filename
	MediaType string
	Data      []byte
}

// runConversionJobWithTracking executes a resolved job, updating the job row
// as it goes. All errors are terminal: the job is marked failed and no
// output files are saved. A panic in an executor is recovered into an
// ordinary error so the caller never sees a failed job as a success.
func (serverHandler *ServerHandler) runConversionJobWithTracking(job *convert.ConversionJob, jobID ulid.ULID) (outputs []database.Output, err error) {
	db := serverHandler.DB

	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in conversion job", "panic", r, "jobID", jobID)
			db.UpdateJobError(jobID, fmt.Sprintf("Panic: %v", r))
			outputs = nil
			err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()

	if statusErr := db.UpdateJobStatus(jobID, database.JobStatusRunning, fmt.Sprintf("Running %s", job.Operation)); statusErr != nil {
		Logger.Error("Failed to update job status", "error", statusErr)
	}

	var pending []pendingOutput
	switch job.Operation {
	case convert.OpConvertImageFormat:
		pending, err = serverHandler.convertImageFormat(job, jobID)
	case convert.OpImagesToPdf:
		pending, err = serverHandler.imagesToPdf(job, jobID)
	case convert.OpPdfToImages:
		pending, err = serverHandler.pdfToImages(job, jobID)
	case convert.OpMergePdfs:
		pending, err = serverHandler.mergePdfs(job, jobID)
	case convert.OpExcludePages:
		pending, err = serverHandler.excludePages(job, jobID)
	default:
		err = fmt.Errorf("unknown operation %q", job.Operation)
	}

	if err != nil {
		Logger.Error("Conversion failed", "operation", job.Operation, "jobID", jobID, "error", err)
		db.UpdateJobError(jobID, err.Error())
		return nil, err
	}

	outputs, err = serverHandler.saveOutputs(pending, jobID)
	if err != nil {
		Logger.Error("Failed saving conversion outputs", "jobID", jobID, "error", err)
		db.UpdateJobError(jobID, err.Error())
		return nil, err
	}

	result, _ := json.Marshal(map[string]int{"outputs": len(outputs)})
	if err := db.CompleteJob(jobID, string(result)); err != nil {
		Logger.Error("Failed to mark job as complete", "error", err)
	}
	Logger.Info("Conversion job completed", "operation", job.Operation, "jobID", jobID, "outputs", len(outputs))
	return outputs, nil
}

// saveOutputs writes the pending files into the output directory and records
// them in the database. Files on disk get a ULID prefix so duplicate
// download names never collide.
func (serverHandler *ServerHandler) saveOutputs(pending []pendingOutput, jobID ulid.ULID) ([]database.Output, error) {
	outputs := make([]database.Output, 0, len(pending))
	for _, out := range pending {
		outputID, err := database.CalculateUUID(time.Now())
		if err != nil {
			return nil, err
		}

		path := filepath.Join(serverHandler.ServerConfig.OutputPath, outputID.String()+"_"+out.Name)
		if err := os.WriteFile(path, out.Data, 0644); err != nil {
			return nil, fmt.Errorf("unable to write output file %s: %w", out.Name, err)
		}

		output := database.Output{
			ID:        outputID.String(),
			JobID:     jobID,
			Name:      out.Name,
			Path:      path,
			SizeBytes: int64(len(out.Data)),
			MediaType: out.MediaType,
			CreatedAt: time.Now(),
		}
		if err := serverHandler.DB.SaveOutput(&output); err != nil {
			return nil, fmt.Errorf("unable to record output %s: %w", out.Name, err)
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// readInput reads a queued file's bytes from the temp directory
func readInput(file convert.SelectableFile) ([]byte, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", file.Name, err)
	}
	return data, nil
}

// stripExtension removes the final extension from a filename
func stripExtension(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
