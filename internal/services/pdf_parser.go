package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
)

type PDFParserService interface {
	ExtractText(data []byte) (string, error)
	// HarvestLinks returns the URI targets of link annotations in page order.
	HarvestLinks(data []byte) []string
}

type pdfParserService struct {
	logger *zap.Logger
}

func NewPDFParserService(log *zap.Logger) PDFParserService {
	return &pdfParserService{logger: logger.OrNop(log)}
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to open PDF: %v", rec)
		}
	}()

	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return r, nil
}

func (p *pdfParserService) ExtractText(data []byte) (text string, err error) {
	r, err := openPDF(data)
	if err != nil {
		return "", err
	}

	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("failed to read PDF: %v", rec)
		}
	}()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			p.logger.Debug("skip unreadable pdf page", zap.Int("page", pageIndex), zap.Error(err))
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	text = CleanText(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

func (p *pdfParserService) HarvestLinks(data []byte) (uris []string) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Debug("pdf link harvest panicked", zap.Any("panic", rec))
			uris = []string{}
		}
	}()

	r, err := openPDF(data)
	if err != nil {
		p.logger.Debug("pdf link harvest failed", zap.Error(err))
		return []string{}
	}

	uris = []string{}
	seen := make(map[string]struct{})

	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		annots := page.V.Key("Annots")
		for i := 0; i < annots.Len(); i++ {
			annot := annots.Index(i)
			if annot.Key("Subtype").Name() != "Link" {
				continue
			}

			uri := strings.TrimSpace(annot.Key("A").Key("URI").Text())
			if uri == "" {
				continue
			}
			if _, dup := seen[uri]; dup {
				continue
			}
			seen[uri] = struct{}{}
			uris = append(uris, uri)
		}
	}

	return uris
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleanedLines := lines[:0]

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
