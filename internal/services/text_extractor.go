package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
)

var ErrEmptyText = errors.New("no text content found")

// SupportedResumeExt lists the resume formats accepted on upload.
var SupportedResumeExt = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".html": true,
	".htm":  true,
}

// TextExtractor turns an uploaded resume into plain text and its embedded
// hyperlinks.
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
	Links(filename string, data []byte) []string
}

type textExtractor struct {
	pdf    PDFParserService
	logger *zap.Logger
}

func NewTextExtractor(pdf PDFParserService, log *zap.Logger) TextExtractor {
	log = logger.OrNop(log)
	if pdf == nil {
		pdf = NewPDFParserService(log)
	}
	return &textExtractor{pdf: pdf, logger: log}
}

func (e *textExtractor) Extract(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = e.pdf.ExtractText(data)
	case ".docx":
		text, err = docxText(data)
	case ".html", ".htm":
		text, err = htmlText(data)
	default:
		text = strings.ToValidUTF8(string(data), "")
	}
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}

	text = CleanText(text)
	if text == "" {
		return "", fmt.Errorf("failed to extract text from %s: %w", filename, ErrEmptyText)
	}
	return text, nil
}

func (e *textExtractor) Links(filename string, data []byte) []string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.pdf.HarvestLinks(data)
	case ".html", ".htm":
		return HarvestHTMLLinks(data)
	case ".docx":
		links, err := docxLinks(data)
		if err != nil {
			e.logger.Debug("docx link harvest failed", zap.String("file", filename), zap.Error(err))
			return []string{}
		}
		return links
	default:
		return nil
	}
}

func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find("p, div, li, br, tr, h1, h2, h3, h4, h5, h6, section, article, header, footer").AppendHtml("\n")

	return doc.Find("body").Text(), nil
}

// HarvestHTMLLinks returns the absolute http(s) and mailto anchors in
// document order, first occurrence kept.
func HarvestHTMLLinks(data []byte) []string {
	out := []string{}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return out
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		lower := strings.ToLower(href)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "mailto:") {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		out = append(out, href)
	})
	return out
}

func openZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(io.LimitReader(rc, maxDocxPartBytes))
	}
	return nil, fmt.Errorf("%s not found in docx", name)
}

const maxDocxPartBytes = 32 << 20

// docxText walks word/document.xml, emitting text runs, tabs and breaks,
// and a newline after every paragraph.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	part, err := openZipEntry(zr, "word/document.xml")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	dec := xml.NewDecoder(bytes.NewReader(part))
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse docx: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}

type docxRelationships struct {
	Relationships []struct {
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// docxLinks reads external hyperlink targets from the document relationships.
func docxLinks(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}

	part, err := openZipEntry(zr, "word/_rels/document.xml.rels")
	if err != nil {
		return []string{}, nil
	}

	var rels docxRelationships
	if err := xml.Unmarshal(part, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse docx relationships: %w", err)
	}

	out := []string{}
	seen := make(map[string]struct{})
	for _, r := range rels.Relationships {
		if !strings.HasSuffix(r.Type, "/hyperlink") || r.TargetMode != "External" {
			continue
		}
		if _, dup := seen[r.Target]; dup {
			continue
		}
		seen[r.Target] = struct{}{}
		out = append(out, r.Target)
	}
	return out, nil
}
