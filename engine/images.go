package engine

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/drummonds/goconvert/convert"
	"github.com/oklog/ulid/v2"
)

// jpegQuality matches what browsers use for canvas exports
const jpegQuality = 92

// encodeImage encodes an image as PNG or JPEG (quality 92)
func encodeImage(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, "", fmt.Errorf("unable to encode PNG: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	case "jpg", "jpeg":
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, "", fmt.Errorf("unable to encode JPEG: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	default:
		return nil, "", fmt.Errorf("unsupported target format %q", format)
	}
}

// convertImageFormat re-encodes each selected image as PNG or JPEG. Output
// names keep the original name with the extension swapped.
func (serverHandler *ServerHandler) convertImageFormat(job *convert.ConversionJob, jobID ulid.ULID) ([]pendingOutput, error) {
	target := job.Params.TargetFormat
	pending := make([]pendingOutput, 0, len(job.Inputs))

	for i, input := range job.Inputs {
		serverHandler.DB.UpdateJobProgress(jobID, progressOf(i, len(job.Inputs)),
			fmt.Sprintf("Converting %s", input.Name))

		data, err := readInput(input)
		if err != nil {
			return nil, err
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unable to decode image %s: %w", input.Name, err)
		}
		encoded, mediaType, err := encodeImage(img, target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", input.Name, err)
		}

		pending = append(pending, pendingOutput{
			Name:      stripExtension(input.Name) + "." + target,
			MediaType: mediaType,
			Data:      encoded,
		})
	}
	return pending, nil
}

// pdfToImages rasterizes every page of the selected PDF to a JPEG at 2.0
// scale. Page numbering in the output names follows the document order, not
// render completion order.
func (serverHandler *ServerHandler) pdfToImages(job *convert.ConversionJob, jobID ulid.ULID) ([]pendingOutput, error) {
	input := job.Inputs[0]
	data, err := readInput(input)
	if err != nil {
		return nil, err
	}

	serverHandler.DB.UpdateJobProgress(jobID, 10, fmt.Sprintf("Rasterizing %s", input.Name))

	var pages []image.Image
	switch {
	case serverHandler.Services != nil && serverHandler.Services.PDFURL != "":
		// Delegate rasterization to the sidecar if one is configured
		pages, err = serverHandler.Services.CallPDFRender(data)
	case serverHandler.Renderer != nil:
		pages, err = serverHandler.Renderer.RenderPages(data)
	default:
		return nil, fmt.Errorf("no PDF renderer available to rasterize %s", input.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to rasterize %s: %w", input.Name, err)
	}

	baseName := stripExtension(input.Name)
	pending := make([]pendingOutput, 0, len(pages))
	for pageNum, pageImage := range pages {
		serverHandler.DB.UpdateJobProgress(jobID, 10+progressOf(pageNum, len(pages))*9/10,
			fmt.Sprintf("Encoding page %d of %d", pageNum+1, len(pages)))

		encoded, mediaType, err := encodeImage(pageImage, "jpg")
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNum+1, err)
		}
		pending = append(pending, pendingOutput{
			Name:      fmt.Sprintf("%s-page-%d.jpg", baseName, pageNum+1),
			MediaType: mediaType,
			Data:      encoded,
		})
	}
	return pending, nil
}

// progressOf maps item i of total onto 0-100
func progressOf(i, total int) int {
	if total == 0 {
		return 100
	}
	return i * 100 / total
}
