package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"alfredoptarigan/resume-screener/internal/models"
)

type ArtifactKind string

const (
	ArtifactCriteriaDraft ArtifactKind = "criteria"
	ArtifactCriteriaFinal ArtifactKind = "criteria_final"
	ArtifactResults       ArtifactKind = "results"

	artifactTimeLayout = "20060102T150405Z"
	artifactListLimit  = 10
)

var (
	ErrInvalidArtifactName = errors.New("invalid artifact name")
	ErrArtifactNotFound    = errors.New("artifact not found")

	artifactNamePattern = regexp.MustCompile(`^(criteria_final|results)_[0-9TZ]+\.json$`)
)

// ArtifactStore keeps finalized criteria and screening results as
// timestamped JSON files in one directory.
type ArtifactStore struct {
	dir string
	now func() time.Time
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir, now: time.Now}
}

func (s *ArtifactStore) Dir() string { return s.dir }

func (s *ArtifactStore) SaveCriteria(doc models.QuestionsDoc) (string, error) {
	return s.Save(ArtifactCriteriaFinal, doc)
}

func (s *ArtifactStore) SaveResults(report *models.ScreeningReport) (string, error) {
	return s.Save(ArtifactResults, report)
}

// Save writes v as <kind>_<UTC timestamp>.json and returns the file name.
// A name already taken moves the timestamp forward a second.
func (s *ArtifactStore) Save(kind ArtifactKind, v any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode %s artifact: %w", kind, err)
	}

	ts := s.now().UTC()
	for {
		name := fmt.Sprintf("%s_%s.json", kind, ts.Format(artifactTimeLayout))
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			ts = ts.Add(time.Second)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create artifact: %w", err)
		}

		_, werr := f.Write(buf.Bytes())
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("failed to write artifact: %w", werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("failed to write artifact: %w", cerr)
		}
		return name, nil
	}
}

// List returns the newest artifact names of kind, newest first. An empty kind
// lists both finalized criteria and results.
func (s *ArtifactStore) List(kind ArtifactKind) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !artifactNamePattern.MatchString(name) {
			continue
		}
		if kind != "" && !strings.HasPrefix(name, string(kind)+"_") {
			continue
		}
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		return artifactTimestamp(names[i]) > artifactTimestamp(names[j])
	})
	if len(names) > artifactListLimit {
		names = names[:artifactListLimit]
	}
	return names, nil
}

func artifactTimestamp(name string) string {
	name = strings.TrimSuffix(name, ".json")
	return name[strings.LastIndex(name, "_")+1:]
}

// Read returns the content of a finalized criteria or results artifact.
func (s *ArtifactStore) Read(name string) ([]byte, error) {
	if !artifactNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidArtifactName, name)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}
