package links

import (
	"regexp"
	"strings"
)

// Family groups patterns by the surface form they recognise. Families are
// applied in declaration order, which is also the discovery priority.
type Family int

const (
	FamilyURL Family = iota
	FamilyDomain
	FamilyLabeled
	FamilyEmail
	FamilyContact
)

func (f Family) String() string {
	switch f {
	case FamilyURL:
		return "url"
	case FamilyDomain:
		return "domain"
	case FamilyLabeled:
		return "labeled"
	case FamilyEmail:
		return "email"
	case FamilyContact:
		return "contact"
	}
	return "unknown"
}

// CaptureRole tells the extractor how to read a pattern's groups.
type CaptureRole int

const (
	// RoleProfilePath: group 1 is the username, optional group 2 a sub-path.
	// A non-empty sub-path marks a repository-level match.
	RoleProfilePath CaptureRole = iota
	// RoleHandle: group 1 is a bare handle. A group 2 of "://", or "/" after a
	// dotted capture, means the capture was the start of a URL and is dropped.
	RoleHandle
)

type Pattern struct {
	Family   Family
	Platform Platform
	Regex    *regexp.Regexp
	Role     CaptureRole
}

// leftEdge stands in for a lookbehind: a bare domain must start the text or
// follow whitespace, an opening bracket, a quote, a separator or a slash.
const leftEdge = `(?:^|[\s(\[<"'|,;:/])`

// mentionEdge keeps the local part of an email address from reading as an @mention.
const mentionEdge = `(?:^|[^A-Za-z0-9._%+-])`

// Patterns is the extraction table. Adding a platform means adding Rules and rows here.
var Patterns = []Pattern{
	// GitHub
	{FamilyURL, GitHub, regexp.MustCompile(`(?i)https?://(?:www\.)?github\.com/([A-Za-z0-9._-]+)((?:/[A-Za-z0-9._-]+)*)`), RoleProfilePath},
	{FamilyDomain, GitHub, regexp.MustCompile(`(?i)` + leftEdge + `(?:www\.)?github\.com/([A-Za-z0-9._-]+)((?:/[A-Za-z0-9._-]+)*)`), RoleProfilePath},
	{FamilyLabeled, GitHub, regexp.MustCompile(`(?i)\bgithub\s*(?:profile|account|handle|username|id)?\s*:\s*@?([A-Za-z0-9._-]+)(://|/)?`), RoleHandle},
	{FamilyLabeled, GitHub, regexp.MustCompile(`(?i)` + mentionEdge + `@([A-Za-z0-9._-]+)\s*\(?\s*(?:on\s+)?github\b`), RoleHandle},
	{FamilyLabeled, GitHub, regexp.MustCompile(`(?i)\bgithub\s+@([A-Za-z0-9._-]+)`), RoleHandle},
	{FamilyLabeled, GitHub, regexp.MustCompile(`(?i)(?:^|\s)git\s*:\s*([A-Za-z0-9._-]{3,})(://|/)?`), RoleHandle},
	{FamilyEmail, GitHub, regexp.MustCompile(`(?i)([A-Za-z0-9._-]+)@github\.com\b`), RoleHandle},
	{FamilyContact, GitHub, regexp.MustCompile(`(?i)[•·▪▫-]\s*github\s*[:\-–—]\s*([A-Za-z0-9._-]+)(://|/)?`), RoleHandle},
	{FamilyContact, GitHub, regexp.MustCompile(`(?i)(?:source\s+code|code|repository|repo)\s*:\s*(?:https?://)?(?:www\.)?github\.com/([A-Za-z0-9._-]+)`), RoleHandle},

	// LinkedIn
	{FamilyURL, LinkedIn, regexp.MustCompile(`(?i)https?://(?:[a-z]{2,3}\.)?linkedin\.com/in/([A-Za-z0-9._-]+)`), RoleProfilePath},
	{FamilyDomain, LinkedIn, regexp.MustCompile(`(?i)` + leftEdge + `(?:[a-z]{2,3}\.)?linkedin\.com/in/([A-Za-z0-9._-]+)`), RoleProfilePath},
	{FamilyLabeled, LinkedIn, regexp.MustCompile(`(?i)\blinkedin\s*(?:profile|account|handle|username|url|id)?\s*:\s*@?([A-Za-z0-9._-]+)(://|/)?`), RoleHandle},
	{FamilyLabeled, LinkedIn, regexp.MustCompile(`(?i)` + mentionEdge + `@([A-Za-z0-9._-]+)\s*\(?\s*(?:on\s+)?linkedin\b`), RoleHandle},
	{FamilyContact, LinkedIn, regexp.MustCompile(`(?i)[•·▪▫-]\s*linkedin\s*[:\-–—]\s*([A-Za-z0-9._-]+)(://|/)?`), RoleHandle},
}

func patternsFor(p Platform) []Pattern {
	var out []Pattern
	for _, pat := range Patterns {
		if pat.Platform == p {
			out = append(out, pat)
		}
	}
	return out
}

// capture reads one match. loc is a FindAllStringSubmatchIndex entry.
func (p Pattern) capture(text string, loc []int) (username string, repoLevel bool, ok bool) {
	group := func(i int) string {
		if 2*i+1 >= len(loc) || loc[2*i] < 0 {
			return ""
		}
		return text[loc[2*i]:loc[2*i+1]]
	}

	username = group(1)
	tail := group(2)

	switch p.Role {
	case RoleProfilePath:
		return username, strings.Trim(tail, "/") != "", username != ""
	case RoleHandle:
		if tail == "://" || (tail == "/" && strings.Contains(username, ".")) {
			return "", false, false
		}
		return username, false, username != ""
	}
	return "", false, false
}
