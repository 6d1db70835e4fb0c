package engine

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/drummonds/goconvert/convert"
	"github.com/oklog/ulid/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// imagesToPdf packages the selected images into a single PDF, one page per
// image, in selection (queue) order. The output is always converted.pdf.
func (serverHandler *ServerHandler) imagesToPdf(job *convert.ConversionJob, jobID ulid.ULID) ([]pendingOutput, error) {
	readers := make([]io.Reader, 0, len(job.Inputs))
	for i, input := range job.Inputs {
		serverHandler.DB.UpdateJobProgress(jobID, progressOf(i, len(job.Inputs)),
			fmt.Sprintf("Embedding %s", input.Name))
		data, err := readInput(input)
		if err != nil {
			return nil, err
		}
		readers = append(readers, bytes.NewReader(data))
	}

	var buf bytes.Buffer
	// nil import parameters: each image becomes a page sized to the image
	if err := api.ImportImages(nil, &buf, readers, nil, nil); err != nil {
		return nil, fmt.Errorf("unable to build PDF from images: %w", err)
	}

	return []pendingOutput{{
		Name:      "converted.pdf",
		MediaType: "application/pdf",
		Data:      buf.Bytes(),
	}}, nil
}

// mergePdfs concatenates every queued PDF, in queue order, into merged.pdf
func (serverHandler *ServerHandler) mergePdfs(job *convert.ConversionJob, jobID ulid.ULID) ([]pendingOutput, error) {
	readers := make([]io.ReadSeeker, 0, len(job.Inputs))
	for i, input := range job.Inputs {
		serverHandler.DB.UpdateJobProgress(jobID, progressOf(i, len(job.Inputs)),
			fmt.Sprintf("Reading %s", input.Name))
		data, err := readInput(input)
		if err != nil {
			return nil, err
		}
		readers = append(readers, bytes.NewReader(data))
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, nil); err != nil {
		return nil, fmt.Errorf("unable to merge PDFs: %w", err)
	}

	return []pendingOutput{{
		Name:      "merged.pdf",
		MediaType: "application/pdf",
		Data:      buf.Bytes(),
	}}, nil
}

// excludePages removes the pages named by the user's exclusion spec from the
// selected PDF. The exclusion string is parsed here, once the true page
// count is known; an empty result set is a valid no-op and the document is
// handed back unchanged.
func (serverHandler *ServerHandler) excludePages(job *convert.ConversionJob, jobID ulid.ULID) ([]pendingOutput, error) {
	input := job.Inputs[0]
	data, err := readInput(input)
	if err != nil {
		return nil, err
	}

	totalPages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to read page count of %s: %w", input.Name, err)
	}

	excluded, err := convert.ParseExclusions(job.Params.Exclusions, totalPages)
	if err != nil {
		return nil, err
	}

	outputName := stripExtension(input.Name) + "-split.pdf"

	if len(excluded) == 0 {
		// Nothing to drop - hand back the document unchanged
		return []pendingOutput{{
			Name:      outputName,
			MediaType: "application/pdf",
			Data:      data,
		}}, nil
	}

	serverHandler.DB.UpdateJobProgress(jobID, 50,
		fmt.Sprintf("Removing %d of %d pages", len(excluded), totalPages))

	// pdfcpu wants 1-based page numbers
	selectedPages := make([]string, 0, len(excluded))
	for _, pageIndex := range excluded.Sorted() {
		selectedPages = append(selectedPages, strconv.Itoa(pageIndex+1))
	}

	var buf bytes.Buffer
	if err := api.RemovePages(bytes.NewReader(data), &buf, selectedPages, nil); err != nil {
		return nil, fmt.Errorf("unable to remove pages from %s: %w", input.Name, err)
	}

	return []pendingOutput{{
		Name:      outputName,
		MediaType: "application/pdf",
		Data:      buf.Bytes(),
	}}, nil
}
