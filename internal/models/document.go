package models

// Media types accepted for analysis.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxDocumentSize is the largest accepted upload in bytes (5 MB).
const MaxDocumentSize = 5 * 1024 * 1024

// Document is a resume selected for one analysis run. It exists only for the
// duration of that run and is never persisted.
type Document struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Size returns the document length in bytes.
func (d Document) Size() int {
	return len(d.Data)
}
