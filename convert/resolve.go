package convert

import "fmt"

// Operation identifies one of the supported conversions
type Operation string

const (
	OpConvertImageFormat Operation = "convertImageFormat"
	OpImagesToPdf        Operation = "imagesToPdf"
	OpPdfToImages        Operation = "pdfToImages"
	OpMergePdfs          Operation = "mergePdfs"
	OpExcludePages       Operation = "excludePages"
)

// Operations lists every supported operation, in menu order
var Operations = []Operation{
	OpConvertImageFormat,
	OpImagesToPdf,
	OpPdfToImages,
	OpMergePdfs,
	OpExcludePages,
}

// Parameters carries the per-operation knobs entered by the user.
// TargetFormat is "png" or "jpg" for convertImageFormat, Exclusions is the
// raw page spec for excludePages. The exclusion spec is validated at
// dispatch time once the page count of the source document is known.
type Parameters struct {
	TargetFormat string `json:"targetFormat,omitempty"`
	Exclusions   string `json:"exclude,omitempty"`
}

// ConversionJob is one resolved, validated unit of work ready for dispatch
type ConversionJob struct {
	Operation Operation
	Inputs    []SelectableFile
	Params    Parameters
}

// SelectionError is returned when the current selection does not satisfy an
// operation's type or cardinality requirement. No job is constructed and no
// conversion library is ever called.
type SelectionError struct {
	Message string
}

func (e *SelectionError) Error() string {
	return e.Message
}

// Resolve validates the requested operation against the current queue and
// selection and builds the job. It is pure: the queue and selection are
// only read, never mutated, and nothing is read from disk.
//
// Merge deliberately considers every PDF in the queue rather than the
// selection - merging is a whole-queue operation in the UI.
func Resolve(op Operation, queue FileQueue, selection Selection, params Parameters) (*ConversionJob, error) {
	if len(selection) == 0 {
		return nil, &SelectionError{Message: "nothing selected"}
	}

	var inputs []SelectableFile
	switch op {
	case OpConvertImageFormat, OpImagesToPdf:
		inputs = filterSelected(queue, selection, ClassImage)
		if len(inputs) < 1 {
			return nil, &SelectionError{Message: "no images selected"}
		}
		if op == OpConvertImageFormat && params.TargetFormat != "png" && params.TargetFormat != "jpg" {
			return nil, &SelectionError{Message: fmt.Sprintf("unsupported target format %q", params.TargetFormat)}
		}

	case OpPdfToImages, OpExcludePages:
		inputs = filterSelected(queue, selection, ClassPdf)
		if len(inputs) != 1 {
			return nil, &SelectionError{Message: "select exactly one PDF"}
		}

	case OpMergePdfs:
		for _, file := range queue {
			if Classify(file) == ClassPdf {
				inputs = append(inputs, file)
			}
		}
		if len(inputs) < 2 {
			return nil, &SelectionError{Message: "need at least two PDFs"}
		}

	default:
		return nil, &SelectionError{Message: fmt.Sprintf("unknown operation %q", op)}
	}

	return &ConversionJob{
		Operation: op,
		Inputs:    inputs,
		Params:    params,
	}, nil
}

// filterSelected returns the selected files of the wanted class, in queue
// order. Indices outside the queue are skipped rather than panicking since
// a stale selection is the caller's bug, not a reason to crash the server.
func filterSelected(queue FileQueue, selection Selection, want FileClass) []SelectableFile {
	var files []SelectableFile
	for _, index := range selection.Indices() {
		if index < 0 || index >= len(queue) {
			continue
		}
		if Classify(queue[index]) == want {
			files = append(files, queue[index])
		}
	}
	return files
}
