package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	MaxZipResumes = 200
	pdfMagic      = "%PDF-"
	minPDFBytes   = 16
)

var ErrNoResumes = errors.New("no resumes found in archive")

// ResumeFile is one resume held in memory.
type ResumeFile struct {
	ID       string
	FileName string
	Data     []byte
}

// ExtractResumesFromZip returns the supported resumes in archive order.
// macOS metadata, hidden files, directories and PDFs without a valid header
// are skipped. maxFileSize bounds each entry; zero means no bound.
func ExtractResumesFromZip(data []byte, maxFileSize int64) ([]ResumeFile, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var out []ResumeFile
	for _, f := range zr.File {
		if len(out) >= MaxZipResumes {
			break
		}
		if !acceptZipEntry(f) {
			continue
		}
		if maxFileSize > 0 && f.UncompressedSize64 > uint64(maxFileSize) {
			continue
		}

		body, err := readZipFile(f, maxFileSize)
		if err != nil {
			return nil, err
		}

		name := path.Base(f.Name)
		if strings.EqualFold(path.Ext(name), ".pdf") && !looksLikePDF(body) {
			continue
		}

		out = append(out, ResumeFile{
			ID:       fmt.Sprintf("r%d", len(out)+1),
			FileName: name,
			Data:     body,
		})
	}

	if len(out) == 0 {
		return nil, ErrNoResumes
	}
	return out, nil
}

func acceptZipEntry(f *zip.File) bool {
	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return false
	}
	if strings.HasPrefix(f.Name, "__MACOSX/") || strings.Contains(f.Name, "/__MACOSX/") {
		return false
	}
	base := path.Base(f.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return SupportedResumeExt[strings.ToLower(path.Ext(base))]
}

func readZipFile(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, limit)
	}
	return body, nil
}

func looksLikePDF(b []byte) bool {
	return len(b) >= minPDFBytes && bytes.HasPrefix(b, []byte(pdfMagic))
}
