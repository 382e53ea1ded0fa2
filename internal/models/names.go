package models

import (
	"path/filepath"
	"strings"
)

// CandidateName derives a display name from a resume file name:
// "jane_doe-resume.pdf" becomes "jane doe resume".
func CandidateName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
