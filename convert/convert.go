// Package convert holds the pure conversion-request logic: classifying
// queued files, parsing page exclusion specs and resolving an operation
// plus the current selection into a validated job. Nothing in here does
// I/O or touches the database so it can be unit tested without a server.
package convert

import "strings"

// FileClass is the closed classification of a queued file
type FileClass string

const (
	ClassImage       FileClass = "image"
	ClassPdf         FileClass = "pdf"
	ClassUnsupported FileClass = "unsupported"
)

// SelectableFile is one file in the queue. Content stays on disk at Path
// and is only read when a job executes.
type SelectableFile struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	SizeBytes int64  `json:"sizeBytes"`
	Path      string `json:"-"`
}

// Classify determines whether a file is an image, a PDF or unsupported.
// Classification is purely by the declared media type string - a mislabeled
// file will misclassify, content sniffing is deliberately not done.
func Classify(file SelectableFile) FileClass {
	if strings.HasPrefix(file.MediaType, "image/") {
		return ClassImage
	}
	if file.MediaType == "application/pdf" {
		return ClassPdf
	}
	return ClassUnsupported
}
