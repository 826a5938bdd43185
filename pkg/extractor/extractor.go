package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/fumiama/go-docx"

	"skillscan/internal/models"
	"skillscan/internal/types"
)

type ExtractorConfig struct {
	// ParseTimeout bounds a single decode. Extraction is one-shot; there are
	// no retries.
	ParseTimeout time.Duration
}

// Extractor turns an uploaded Document into plain text. PDF decoding is
// delegated to the eino PDF parser, DOCX to go-docx; this package never reads
// document bytes itself.
type Extractor struct {
	config    ExtractorConfig
	pdfParser *pdf.PDFParser
}

func NewWithConfig(ctx context.Context, config ExtractorConfig) (*Extractor, error) {
	if config.ParseTimeout == 0 {
		config.ParseTimeout = 30 * time.Second
	}

	// ToPages so page order is preserved when joining the page texts.
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF parser: %w", err)
	}

	return &Extractor{
		config:    config,
		pdfParser: p,
	}, nil
}

// Extract returns the readable text of doc, whitespace-normalized.
func (e *Extractor) Extract(ctx context.Context, doc models.Document) (string, error) {
	switch doc.MediaType {
	case models.MediaTypePDF:
		return e.extractPDF(ctx, doc)
	case models.MediaTypeDOCX:
		return e.extractDOCX(doc)
	default:
		return "", types.NewError(types.KindExtraction, "Unsupported file type.", nil)
	}
}

func (e *Extractor) extractPDF(ctx context.Context, doc models.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.ParseTimeout)
	defer cancel()

	docs, err := e.pdfParser.Parse(ctx, bytes.NewReader(doc.Data),
		einoParser.WithURI(doc.Filename),
	)
	if err != nil {
		return "", types.NewError(types.KindExtraction,
			fmt.Sprintf("Failed to parse PDF: %v", err), err)
	}
	if len(docs) == 0 {
		return "", types.NewError(types.KindExtraction,
			"Failed to parse PDF: no readable pages", nil)
	}

	// Page 1..N in order, pages joined with single spaces.
	var sb strings.Builder
	for i, page := range docs {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(page.Content)
	}

	return normalizeWhitespace(sb.String()), nil
}

func (e *Extractor) extractDOCX(doc models.Document) (string, error) {
	parsed, err := docx.Parse(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", types.NewError(types.KindExtraction,
			fmt.Sprintf("Failed to parse DOCX: %v", err), err)
	}

	var sb strings.Builder
	for _, item := range parsed.Document.Body.Items {
		switch block := item.(type) {
		case *docx.Paragraph:
			sb.WriteString(block.String())
			sb.WriteString(" ")
		case *docx.Table:
			sb.WriteString(block.String())
			sb.WriteString(" ")
		}
	}

	return normalizeWhitespace(sb.String()), nil
}

// normalizeWhitespace collapses whitespace runs to single spaces and trims.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
