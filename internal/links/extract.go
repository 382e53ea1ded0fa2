package links

import (
	"strings"
)

// MaxInputBytes caps the text scanned per call.
const MaxInputBytes = 512 << 10

// Identifier is a validated profile reference found in a resume.
type Identifier struct {
	Platform  Platform `json:"platform"`
	Username  string   `json:"username"`
	URL       string   `json:"url"`
	Family    string   `json:"family"`
	RepoLevel bool     `json:"repo_level,omitempty"`
}

// Extract returns the canonical profile URLs for platform p found in text,
// deduplicated by username. Unknown platforms and empty text yield an empty slice.
func Extract(p Platform, text string) []string {
	return URLs(ExtractIdentifiers(p, text))
}

// ExtractIdentifiers is Extract with match details kept.
func ExtractIdentifiers(p Platform, text string) []Identifier {
	rules, ok := RulesFor(p)
	if !ok || strings.TrimSpace(text) == "" {
		return []Identifier{}
	}

	if len(text) > MaxInputBytes {
		text = text[:MaxInputBytes]
	}
	text = strings.Join(strings.Fields(text), " ")

	var found []Identifier
	for _, pat := range patternsFor(p) {
		for _, loc := range pat.Regex.FindAllStringSubmatchIndex(text, -1) {
			username, repoLevel, ok := pat.capture(text, loc)
			if !ok {
				continue
			}

			username = trimPunctuation(username)
			if !rules.Validate(username) {
				continue
			}

			found = append(found, Identifier{
				Platform:  p,
				Username:  username,
				URL:       rules.Canonical(username),
				Family:    pat.Family.String(),
				RepoLevel: repoLevel,
			})
		}
	}

	return dedupe(found)
}

// ExtractFromURLs runs the extractor over raw hyperlink targets, such as PDF
// link annotations or HTML anchors.
func ExtractFromURLs(p Platform, uris []string) []Identifier {
	return ExtractIdentifiers(p, strings.Join(uris, " "))
}

// Merge unions identifier lists by username. Earlier lists win.
func Merge(lists ...[]Identifier) []Identifier {
	seen := make(map[string]struct{})
	out := []Identifier{}
	for _, list := range lists {
		for _, id := range list {
			key := string(id.Platform) + "/" + strings.ToLower(id.Username)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Collect runs text and uris through every platform in order. Text matches
// come before link matches within a platform.
func Collect(platforms []Platform, text string, uris []string) []Identifier {
	out := []Identifier{}
	for _, p := range platforms {
		out = append(out, Merge(ExtractIdentifiers(p, text), ExtractFromURLs(p, uris))...)
	}
	return out
}

// URLs projects identifiers to their canonical URLs.
func URLs(ids []Identifier) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.URL)
	}
	return out
}

// Bundle holds every identifier found for one resume.
type Bundle struct {
	GitHub   []Identifier `json:"github"`
	LinkedIn []Identifier `json:"linkedin"`
}

// NewBundle extracts identifiers from the visible text first and the
// harvested link targets second.
func NewBundle(text string, uris []string) Bundle {
	return Bundle{
		GitHub:   Merge(ExtractIdentifiers(GitHub, text), ExtractFromURLs(GitHub, uris)),
		LinkedIn: Merge(ExtractIdentifiers(LinkedIn, text), ExtractFromURLs(LinkedIn, uris)),
	}
}

func (b Bundle) GitHubURLs() []string { return URLs(b.GitHub) }

// dedupe keeps one entry per username. Profile-level matches come first in
// discovery order, then usernames only seen at repository level.
func dedupe(found []Identifier) []Identifier {
	seen := make(map[string]struct{}, len(found))
	out := []Identifier{}

	for pass := 0; pass < 2; pass++ {
		for _, id := range found {
			if pass == 0 && id.RepoLevel {
				continue
			}
			key := strings.ToLower(id.Username)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func trimPunctuation(s string) string {
	return strings.TrimRight(s, `).,;:'"`)
}
