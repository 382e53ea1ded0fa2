package links

import (
	"regexp"
	"strings"
)

type Platform string

const (
	GitHub   Platform = "github"
	LinkedIn Platform = "linkedin"
)

// ParsePlatform maps a user-supplied platform name to a known Platform.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case GitHub:
		return GitHub, true
	case LinkedIn:
		return LinkedIn, true
	}
	return "", false
}

// Rules describe how a platform names its profiles.
type Rules struct {
	Platform      Platform
	Host          string
	ProfilePrefix string
	Reserved      map[string]struct{}
	Validate      func(username string) bool
}

// Canonical returns the profile URL for username. The username is not validated.
func (r Rules) Canonical(username string) string {
	return "https://" + r.Host + "/" + r.ProfilePrefix + username
}

// ReservedGitHub holds top-level github.com paths that are site sections, not accounts.
var ReservedGitHub = newSet(
	"about", "account", "admin", "api", "apps", "assets", "blog", "business", "contact",
	"dashboard", "developer", "docs", "enterprise", "explore", "features", "gist", "help",
	"home", "join", "login", "logout", "marketplace", "new", "notifications", "organizations",
	"pricing", "privacy", "search", "security", "settings", "site", "support", "team", "terms",
	"topics", "trending", "users", "www",
)

var (
	githubUsernameRe   = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	linkedinUsernameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// ValidGitHubUsername reports whether u can be a GitHub account name.
func ValidGitHubUsername(u string) bool {
	if len(u) <= 2 || !githubUsernameRe.MatchString(u) {
		return false
	}
	if strings.HasPrefix(u, "-") || strings.HasSuffix(u, "-") || strings.Contains(u, "--") {
		return false
	}
	_, reserved := ReservedGitHub[strings.ToLower(u)]
	return !reserved
}

// ValidLinkedInUsername reports whether u can be a linkedin.com/in/ slug.
func ValidLinkedInUsername(u string) bool {
	return len(u) > 2 && linkedinUsernameRe.MatchString(u)
}

var platformRules = map[Platform]Rules{
	GitHub: {
		Platform: GitHub,
		Host:     "github.com",
		Reserved: ReservedGitHub,
		Validate: ValidGitHubUsername,
	},
	LinkedIn: {
		Platform:      LinkedIn,
		Host:          "linkedin.com",
		ProfilePrefix: "in/",
		Reserved:      map[string]struct{}{},
		Validate:      ValidLinkedInUsername,
	},
}

// RulesFor returns the naming rules of p.
func RulesFor(p Platform) (Rules, bool) {
	r, ok := platformRules[p]
	return r, ok
}

var canonicalRe = map[Platform]*regexp.Regexp{
	GitHub:   regexp.MustCompile(`^https://github\.com/([^/?#]+)$`),
	LinkedIn: regexp.MustCompile(`^https://linkedin\.com/in/([^/?#]+)$`),
}

// Username extracts the username from a canonical profile URL. It fails for
// anything that is not exactly the canonical form or whose username is invalid.
func Username(p Platform, profileURL string) (string, bool) {
	re, ok := canonicalRe[p]
	if !ok {
		return "", false
	}
	m := re.FindStringSubmatch(profileURL)
	if m == nil {
		return "", false
	}
	r := platformRules[p]
	if !r.Validate(m[1]) {
		return "", false
	}
	return m[1], true
}

func newSet(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}
