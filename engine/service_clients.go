package engine

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

// ServiceClients holds HTTP clients for external services
type ServiceClients struct {
	PDFURL     string
	HTTPClient *http.Client
}

// NewServiceClients creates a new service client manager
func NewServiceClients(pdfURL string) *ServiceClients {
	return &ServiceClients{
		PDFURL: pdfURL,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// PDFRenderResponse represents the response from the PDF render service
type PDFRenderResponse struct {
	Pages []string `json:"pages"` // base64 encoded JPEG, one per page
	Error string   `json:"error,omitempty"`
}

// CallPDFRender sends a PDF to the PDF service and returns one image per page
func (sc *ServiceClients) CallPDFRender(pdfBytes []byte) ([]image.Image, error) {
	// Create multipart form data
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("pdf", "document.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err = part.Write(pdfBytes); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	// Make HTTP request
	url := fmt.Sprintf("%s/pdf/render", sc.PDFURL)
	req, err := http.NewRequest("POST", url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := sc.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call PDF service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("PDF service returned error status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	// Parse response
	var renderResp PDFRenderResponse
	if err := json.NewDecoder(resp.Body).Decode(&renderResp); err != nil {
		return nil, fmt.Errorf("failed to decode PDF response: %w", err)
	}

	if renderResp.Error != "" {
		return nil, fmt.Errorf("PDF service error: %s", renderResp.Error)
	}

	pages := make([]image.Image, 0, len(renderResp.Pages))
	for pageNum, encoded := range renderResp.Pages {
		imageData, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 page %d: %w", pageNum+1, err)
		}
		img, err := imaging.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("failed to decode page %d image: %w", pageNum+1, err)
		}
		pages = append(pages, img)
	}

	return pages, nil
}
