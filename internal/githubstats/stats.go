// Package githubstats fetches public GitHub profile statistics used to score
// candidates, behind a time-to-live cache.
package githubstats

import (
	"errors"
	"fmt"
	"time"
)

// Stats is a summary of one GitHub account. The zero value means "unavailable".
type Stats struct {
	Username       string    `json:"username"`
	PublicRepos    int       `json:"public_repos"`
	Followers      int       `json:"followers"`
	Following      int       `json:"following"`
	TotalStars     int       `json:"total_stars"`
	TotalForks     int       `json:"total_forks"`
	RecentActivity int       `json:"recent_activity"`
	CreatedAt      time.Time `json:"created_at"`
	Bio            string    `json:"bio,omitempty"`
	Company        string    `json:"company,omitempty"`
	Location       string    `json:"location,omitempty"`
	Blog           string    `json:"blog,omitempty"`
}

func (s Stats) IsEmpty() bool {
	return s.Username == ""
}

// Outcome explains how a lookup ended. Callers that only need availability
// use Fetch, which folds every non-Found outcome into empty Stats.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeUpstreamError
	OutcomeInvalidURL
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeUpstreamError:
		return "upstream_error"
	case OutcomeInvalidURL:
		return "invalid_url"
	}
	return "unknown"
}

type Result struct {
	Stats     Stats
	Outcome   Outcome
	Err       error
	FromCache bool
}

var (
	ErrInvalidProfileURL = errors.New("githubstats: not a canonical github profile url")
	ErrNotFound          = errors.New("githubstats: user not found")
)

// UpstreamError carries the failing request and, when there was a response, its status.
type UpstreamError struct {
	URL    string
	Status int
	Cause  error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("githubstats: request %s failed: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("githubstats: request %s returned status %d", e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
