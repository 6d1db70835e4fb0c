package engine

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ledongthuc/pdf"

	"github.com/drummonds/goconvert/config"
	"github.com/drummonds/goconvert/convert"
	"github.com/drummonds/goconvert/database"
	"github.com/drummonds/goconvert/engine/pdfrenderer"
	"github.com/drummonds/goconvert/internal/build"
)

// ServerHandler will inject the variables needed into routes. It owns the
// file queue and its selection; every handler that touches them takes
// queueMu so removal and selection renumbering stay atomic.
type ServerHandler struct {
	DB           database.Repository
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
	Queue        *convert.Queue
	Renderer     pdfrenderer.Renderer
	Services     *ServiceClients

	queueMu   sync.Mutex
	convertMu sync.Mutex // serializes conversion dispatch (single-flight)
}

// queuedFileView is what the frontend sees for one queued file
type queuedFileView struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	SizeBytes int64  `json:"sizeBytes"`
	Class     string `json:"class"`
	Selected  bool   `json:"selected"`
}

// queueView is the full queue + selection snapshot returned by queue routes
type queueView struct {
	Files    []queuedFileView `json:"files"`
	Selected []int            `json:"selected"`
}

// snapshotQueue builds a queueView. Callers must hold queueMu.
func (serverHandler *ServerHandler) snapshotQueue() queueView {
	view := queueView{
		Files:    make([]queuedFileView, 0, len(serverHandler.Queue.Files)),
		Selected: serverHandler.Queue.Selected.Indices(),
	}
	for index, file := range serverHandler.Queue.Files {
		_, selected := serverHandler.Queue.Selected[index]
		view.Files = append(view.Files, queuedFileView{
			Index:     index,
			Name:      file.Name,
			MediaType: file.MediaType,
			SizeBytes: file.SizeBytes,
			Class:     string(convert.Classify(file)),
			Selected:  selected,
		})
	}
	return view
}

// UploadFiles adds one or more files to the queue
// @Summary Upload files into the queue
// @Description Accepts multipart uploads and appends each file to the conversion queue
// @Tags Queue
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} queueView "Queue after upload"
// @Failure 400 {object} map[string]interface{} "Bad upload"
// @Failure 413 {object} map[string]interface{} "File too large"
// @Router /files [post]
func (serverHandler *ServerHandler) UploadFiles(context echo.Context) error {
	form, err := context.MultipartForm()
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "expected multipart upload with one or more 'file' parts",
		})
	}

	fileHeaders := form.File["file"]
	if len(fileHeaders) == 0 {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "no files in upload",
		})
	}

	maxBytes := int64(serverHandler.ServerConfig.MaxUploadMB) * 1024 * 1024

	serverHandler.queueMu.Lock()
	defer serverHandler.queueMu.Unlock()

	for _, fileHeader := range fileHeaders {
		if fileHeader.Size > maxBytes {
			return context.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{
				"error": fmt.Sprintf("%s exceeds the %dMB upload limit", fileHeader.Filename, serverHandler.ServerConfig.MaxUploadMB),
			})
		}

		src, err := fileHeader.Open()
		if err != nil {
			Logger.Error("Unable to open uploaded file", "name", fileHeader.Filename, "error", err)
			return context.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "unable to read upload",
			})
		}
		body, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			Logger.Error("Unable to read uploaded file", "name", fileHeader.Filename, "error", err)
			return context.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "unable to read upload",
			})
		}

		// Keep queue files under the temp dir with a ULID prefix so two
		// uploads of the same name never clash
		fileULID, err := database.CalculateUUID(time.Now())
		if err != nil {
			return context.JSON(http.StatusInternalServerError, err)
		}
		path := filepath.Join(serverHandler.ServerConfig.TempPath, fileULID.String()+"_"+filepath.Base(fileHeader.Filename))
		if err := os.WriteFile(path, body, 0644); err != nil {
			Logger.Error("Unable to write uploaded file", "path", path, "error", err)
			return context.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error": "unable to store upload",
			})
		}

		queued := convert.SelectableFile{
			Name:      filepath.Base(fileHeader.Filename),
			MediaType: fileHeader.Header.Get("Content-Type"),
			SizeBytes: fileHeader.Size,
			Path:      path,
		}
		index := serverHandler.Queue.Add(queued)
		Logger.Info("File added to queue", "name", queued.Name, "mediaType", queued.MediaType,
			"class", convert.Classify(queued), "index", index)
	}

	return context.JSON(http.StatusOK, serverHandler.snapshotQueue())
}

// GetQueue returns the current queue and selection
// @Summary Get the file queue
// @Tags Queue
// @Produce json
// @Success 200 {object} queueView "Current queue"
// @Router /files [get]
func (serverHandler *ServerHandler) GetQueue(context echo.Context) error {
	serverHandler.queueMu.Lock()
	defer serverHandler.queueMu.Unlock()
	return context.JSON(http.StatusOK, serverHandler.snapshotQueue())
}

// RemoveFile removes the file at an index, renumbering the selection
// @Summary Remove a file from the queue
// @Tags Queue
// @Produce json
// @Param index path int true "Queue index"
// @Success 200 {object} queueView "Queue after removal"
// @Failure 400 {object} map[string]interface{} "Bad index"
// @Router /files/{index} [delete]
func (serverHandler *ServerHandler) RemoveFile(context echo.Context) error {
	index, err := strconv.Atoi(context.Param("index"))
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "index must be an integer",
		})
	}

	serverHandler.queueMu.Lock()
	defer serverHandler.queueMu.Unlock()

	removed, err := serverHandler.Queue.Remove(index)
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	// The bytes under temp are no longer reachable from the queue
	if removed.Path != "" {
		if err := os.Remove(removed.Path); err != nil {
			Logger.Warn("Unable to delete removed queue file", "path", removed.Path, "error", err)
		}
	}
	Logger.Info("File removed from queue", "name", removed.Name, "index", index)

	return context.JSON(http.StatusOK, serverHandler.snapshotQueue())
}

// ClearQueue empties the queue and deletes its temp files
// @Summary Clear the file queue
// @Tags Queue
// @Produce json
// @Success 200 {object} queueView "Empty queue"
// @Router /files [delete]
func (serverHandler *ServerHandler) ClearQueue(context echo.Context) error {
	serverHandler.queueMu.Lock()
	defer serverHandler.queueMu.Unlock()

	for _, file := range serverHandler.Queue.Files {
		if file.Path == "" {
			continue
		}
		if err := os.Remove(file.Path); err != nil {
			Logger.Warn("Unable to delete queue file", "path", file.Path, "error", err)
		}
	}
	serverHandler.Queue.Clear()
	Logger.Info("Queue cleared")

	return context.JSON(http.StatusOK, serverHandler.snapshotQueue())
}

// SelectFile marks a queued file as selected
// @Summary Select a queued file
// @Tags Queue
// @Produce json
// @Param index path int true "Queue index"
// @Success 200 {object} queueView "Queue after selection"
// @Failure 400 {object} map[string]interface{} "Bad index"
// @Router /files/{index}/select [post]
func (serverHandler *ServerHandler) SelectFile(context echo.Context) error {
	return serverHandler.changeSelection(context, true)
}

// DeselectFile removes a queued file from the selection
// @Summary Deselect a queued file
// @Tags Queue
// @Produce json
// @Param index path int true "Queue index"
// @Success 200 {object} queueView "Queue after deselection"
// @Failure 400 {object} map[string]interface{} "Bad index"
// @Router /files/{index}/deselect [post]
func (serverHandler *ServerHandler) DeselectFile(context echo.Context) error {
	return serverHandler.changeSelection(context, false)
}

func (serverHandler *ServerHandler) changeSelection(context echo.Context, selected bool) error {
	index, err := strconv.Atoi(context.Param("index"))
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "index must be an integer",
		})
	}

	serverHandler.queueMu.Lock()
	defer serverHandler.queueMu.Unlock()

	if selected {
		err = serverHandler.Queue.Select(index)
	} else {
		err = serverHandler.Queue.Deselect(index)
	}
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	return context.JSON(http.StatusOK, serverHandler.snapshotQueue())
}

// fileInfoView is the metadata returned for a single queued file
type fileInfoView struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	SizeBytes int64  `json:"sizeBytes"`
	Class     string `json:"class"`
	PageCount int    `json:"pageCount,omitempty"`
	Title     string `json:"title,omitempty"`
}

// GetFileInfo returns metadata for a queued file. For PDFs the page count
// and document title are read without rasterizing anything.
// @Summary Get metadata for a queued file
// @Tags Queue
// @Produce json
// @Param index path int true "Queue index"
// @Success 200 {object} fileInfoView "File metadata"
// @Failure 400 {object} map[string]interface{} "Bad index"
// @Router /files/{index}/info [get]
func (serverHandler *ServerHandler) GetFileInfo(context echo.Context) error {
	index, err := strconv.Atoi(context.Param("index"))
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "index must be an integer",
		})
	}

	serverHandler.queueMu.Lock()
	if index < 0 || index >= len(serverHandler.Queue.Files) {
		serverHandler.queueMu.Unlock()
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("queue index %d out of range", index),
		})
	}
	file := serverHandler.Queue.Files[index]
	serverHandler.queueMu.Unlock()

	info := fileInfoView{
		Name:      file.Name,
		MediaType: file.MediaType,
		SizeBytes: file.SizeBytes,
		Class:     string(convert.Classify(file)),
	}

	if convert.Classify(file) == convert.ClassPdf {
		pdfFile, reader, err := pdf.Open(file.Path)
		if err != nil {
			Logger.Warn("Unable to open PDF for metadata", "name", file.Name, "error", err)
			return context.JSON(http.StatusOK, info)
		}
		defer pdfFile.Close()
		info.PageCount = reader.NumPage()
		if trailer := reader.Trailer(); !trailer.IsNull() {
			docInfo := trailer.Key("Info")
			if !docInfo.IsNull() {
				info.Title = docInfo.Key("Title").Text()
			}
		}
	}

	return context.JSON(http.StatusOK, info)
}

// GetAboutInfo returns version and configuration info for the about page
// @Summary About information
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{} "Version and config"
// @Router /about [get]
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":            "goconvert",
		"version":         build.Version,
		"commit":          build.Commit,
		"renderer":        serverHandler.ServerConfig.Renderer,
		"outputRetention": serverHandler.ServerConfig.OutputRetention,
		"maxUploadMB":     serverHandler.ServerConfig.MaxUploadMB,
		"operations":      convert.Operations,
	})
}
