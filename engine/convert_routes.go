package engine

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/goconvert/convert"
	"github.com/drummonds/goconvert/database"
)

// convertRequest is the body of POST /api/convert
type convertRequest struct {
	Operation    string `json:"operation"`
	TargetFormat string `json:"targetFormat"`
	Exclude      string `json:"exclude"`
}

// convertResponse returns the finished job row plus its outputs
type convertResponse struct {
	Job     *database.Job     `json:"job"`
	Outputs []database.Output `json:"outputs"`
}

// RunConversion resolves the requested operation against the current queue
// and selection and runs it synchronously. Only one conversion runs at a
// time; a second request blocks until the first finishes.
// @Summary Run a conversion
// @Description Resolves the operation against the queue and selection, runs it and returns the outputs
// @Tags Convert
// @Accept json
// @Produce json
// @Param request body convertRequest true "Operation and parameters"
// @Success 200 {object} convertResponse "Completed job with outputs"
// @Failure 400 {object} map[string]interface{} "Invalid request or selection"
// @Failure 500 {object} map[string]interface{} "Conversion failed"
// @Router /convert [post]
func (serverHandler *ServerHandler) RunConversion(context echo.Context) error {
	var request convertRequest
	if err := context.Bind(&request); err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	op := convert.Operation(request.Operation)
	known := false
	for _, candidate := range convert.Operations {
		if op == candidate {
			known = true
			break
		}
	}
	if !known {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "unknown operation " + strconv.Quote(request.Operation),
		})
	}

	// Snapshot the queue so the running job is unaffected by concurrent
	// queue edits
	serverHandler.queueMu.Lock()
	queue := make(convert.FileQueue, len(serverHandler.Queue.Files))
	copy(queue, serverHandler.Queue.Files)
	selection := make(convert.Selection, len(serverHandler.Queue.Selected))
	for index := range serverHandler.Queue.Selected {
		selection[index] = struct{}{}
	}
	serverHandler.queueMu.Unlock()

	job, err := convert.Resolve(op, queue, selection, convert.Parameters{
		TargetFormat: request.TargetFormat,
		Exclusions:   request.Exclude,
	})
	if err != nil {
		var selErr *convert.SelectionError
		var valErr *convert.ValidationError
		if errors.As(err, &selErr) || errors.As(err, &valErr) {
			return context.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": err.Error(),
			})
		}
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": err.Error(),
		})
	}

	serverHandler.convertMu.Lock()
	defer serverHandler.convertMu.Unlock()

	jobRow, err := serverHandler.DB.CreateJob(database.JobType(string(op)), "Queued "+string(op))
	if err != nil {
		Logger.Error("Unable to create job row", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "unable to create job",
		})
	}

	outputs, err := serverHandler.runConversionJobWithTracking(job, jobRow.ID)
	if err != nil {
		var valErr *convert.ValidationError
		status := http.StatusInternalServerError
		if errors.As(err, &valErr) {
			status = http.StatusBadRequest
		}
		return context.JSON(status, map[string]interface{}{
			"error": err.Error(),
			"jobId": jobRow.ID.String(),
		})
	}

	finished, err := serverHandler.DB.GetJob(jobRow.ID)
	if err != nil {
		finished = jobRow
	}

	return context.JSON(http.StatusOK, convertResponse{
		Job:     finished,
		Outputs: outputs,
	})
}

// GetOutputs lists recent conversion outputs, newest first
// @Summary List conversion outputs
// @Tags Outputs
// @Produce json
// @Param limit query int false "Maximum outputs to return (default 50)"
// @Success 200 {object} map[string]interface{} "Outputs"
// @Router /outputs [get]
func (serverHandler *ServerHandler) GetOutputs(context echo.Context) error {
	limit := 50
	if limitParam := context.QueryParam("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	outputs, err := serverHandler.DB.GetRecentOutputs(limit)
	if err != nil {
		Logger.Error("Unable to list outputs", "error", err)
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "unable to list outputs",
		})
	}

	return context.JSON(http.StatusOK, map[string]interface{}{
		"outputs": outputs,
		"count":   len(outputs),
	})
}

// DownloadOutput streams a stored output file with its original name
// @Summary Download a conversion output
// @Tags Outputs
// @Produce octet-stream
// @Param id path string true "Output ID"
// @Success 200 {file} binary "Output file"
// @Failure 404 {object} map[string]interface{} "Output not found"
// @Router /outputs/{id}/download [get]
func (serverHandler *ServerHandler) DownloadOutput(context echo.Context) error {
	id := context.Param("id")
	output, err := serverHandler.DB.GetOutput(id)
	if err != nil {
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "output not found",
		})
	}

	if _, err := os.Stat(output.Path); err != nil {
		Logger.Warn("Output row exists but file is missing", "id", id, "path", output.Path)
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "output file no longer available",
		})
	}

	if output.MediaType != "" {
		context.Response().Header().Set(echo.HeaderContentType, output.MediaType)
	}
	return context.Attachment(output.Path, output.Name)
}

// DeleteOutputFile removes a stored output and its database row
// @Summary Delete a conversion output
// @Tags Outputs
// @Produce json
// @Param id path string true "Output ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Output not found"
// @Router /outputs/{id} [delete]
func (serverHandler *ServerHandler) DeleteOutputFile(context echo.Context) error {
	id := context.Param("id")
	output, err := serverHandler.DB.GetOutput(id)
	if err != nil {
		return context.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "output not found",
		})
	}

	if err := os.Remove(output.Path); err != nil && !os.IsNotExist(err) {
		Logger.Warn("Unable to delete output file", "path", output.Path, "error", err)
	}
	if err := serverHandler.DB.DeleteOutput(id); err != nil {
		return context.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "unable to delete output",
		})
	}

	return context.JSON(http.StatusOK, map[string]interface{}{
		"deleted": id,
	})
}
