package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// renderDPI matches the main server's rasterization scale (2x of the PDF's
// native 72 DPI user space)
const renderDPI = 144

// jpegQuality matches what browsers use for canvas exports
const jpegQuality = 92

type RenderResponse struct {
	Pages []string `json:"pages"` // base64 encoded JPEG, one per page
	Error string   `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8002"
	}

	log.Printf("Starting PDF service on port %s", port)

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/pdf/render", renderHandler)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func renderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form
	err := r.ParseMultipartForm(32 << 20) // 32MB max
	if err != nil {
		sendErrorResponse(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	// Get the file from the form
	file, header, err := r.FormFile("pdf")
	if err != nil {
		sendErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	log.Printf("Processing render request for file: %s", header.Filename)

	// Read file content
	pdfData, err := io.ReadAll(file)
	if err != nil {
		sendErrorResponse(w, "Failed to read PDF file", http.StatusInternalServerError)
		return
	}

	pages, err := renderPages(pdfData)
	if err != nil {
		log.Printf("Render error: %v", err)
		sendErrorResponse(w, fmt.Sprintf("Render failed: %v", err), http.StatusInternalServerError)
		return
	}

	response := RenderResponse{
		Pages: pages,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// renderPages rasterizes each page to JPEG and returns them base64 encoded
// in document order
func renderPages(pdfData []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages := make([]string, 0, numPages)
	for pageNum := 0; pageNum < numPages; pageNum++ {
		img, err := doc.ImageDPI(pageNum, renderDPI)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", pageNum+1, err)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", pageNum+1, err)
		}
		pages = append(pages, base64.StdEncoding.EncodeToString(buf.Bytes()))
	}

	return pages, nil
}

func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]string{
		"error": message,
	}
	json.NewEncoder(w).Encode(response)
}
