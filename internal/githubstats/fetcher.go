package githubstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-screener/internal/links"
)

const (
	DefaultBaseURL     = "https://api.github.com"
	DefaultTimeout     = 15 * time.Second
	DefaultConcurrency = 4

	recentWindow = 365 * 24 * time.Hour
	reposPerPage = 100
)

// HTTPDoer is the part of *http.Client the fetcher needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	BaseURL     string
	Token       string
	UserAgent   string
	Timeout     time.Duration
	Concurrency int
	Client      HTTPDoer
	Cache       *Cache
	Now         func() time.Time
	Logger      *zap.Logger
}

type Fetcher struct {
	client      HTTPDoer
	baseURL     string
	token       string
	userAgent   string
	timeout     time.Duration
	concurrency int
	cache       *Cache
	now         func() time.Time
	logger      *zap.Logger
}

func NewFetcher(opts Options) *Fetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "resume-screener"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Cache == nil {
		opts.Cache = NewCache(DefaultCacheTTL, opts.Now)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Fetcher{
		client:      opts.Client,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		token:       opts.Token,
		userAgent:   opts.UserAgent,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		cache:       opts.Cache,
		now:         opts.Now,
		logger:      opts.Logger,
	}
}

// Fetch returns the stats behind a canonical GitHub profile URL, or empty
// Stats when they are unavailable for any reason.
func (f *Fetcher) Fetch(ctx context.Context, profileURL string) Stats {
	return f.Lookup(ctx, profileURL).Stats
}

// Lookup is Fetch with the outcome kept. Only Found results are cached.
func (f *Fetcher) Lookup(ctx context.Context, profileURL string) Result {
	username, ok := links.Username(links.GitHub, profileURL)
	if !ok {
		return Result{Outcome: OutcomeInvalidURL, Err: ErrInvalidProfileURL}
	}

	if stats, ok := f.cache.Get(username); ok {
		return Result{Stats: stats, Outcome: OutcomeFound, FromCache: true}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	stats, err := f.fetchUser(ctx, username)
	if err != nil {
		outcome := OutcomeUpstreamError
		if errors.Is(err, ErrNotFound) {
			outcome = OutcomeNotFound
		}
		f.logger.Debug("github stats unavailable",
			zap.String("username", username),
			zap.String("outcome", outcome.String()),
			zap.Error(err),
		)
		return Result{Outcome: outcome, Err: err}
	}

	f.cache.Set(username, stats)
	return Result{Stats: stats, Outcome: OutcomeFound}
}

// FetchMany looks up every distinct profile URL concurrently. The map is keyed
// by the input URL and holds empty Stats for failed lookups.
func (f *Fetcher) FetchMany(ctx context.Context, profileURLs []string) map[string]Stats {
	out := make(map[string]Stats, len(profileURLs))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	seen := make(map[string]struct{}, len(profileURLs))
	for _, u := range profileURLs {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		u := u
		g.Go(func() error {
			stats := f.Fetch(gCtx, u)
			mu.Lock()
			out[u] = stats
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out
}

type userResponse struct {
	Login       string    `json:"login"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
	Bio         *string   `json:"bio"`
	Company     *string   `json:"company"`
	Location    *string   `json:"location"`
	Blog        *string   `json:"blog"`
}

type repoResponse struct {
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (f *Fetcher) fetchUser(ctx context.Context, username string) (Stats, error) {
	var user userResponse
	userURL := fmt.Sprintf("%s/users/%s", f.baseURL, url.PathEscape(username))
	if err := f.getJSON(ctx, userURL, nil, &user); err != nil {
		return Stats{}, err
	}

	var repos []repoResponse
	reposURL := fmt.Sprintf("%s/users/%s/repos", f.baseURL, url.PathEscape(username))
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprint(reposPerPage))
	if err := f.getJSON(ctx, reposURL, q, &repos); err != nil {
		return Stats{}, err
	}

	login := user.Login
	if login == "" {
		login = username
	}

	stats := Stats{
		Username:    login,
		PublicRepos: user.PublicRepos,
		Followers:   user.Followers,
		Following:   user.Following,
		CreatedAt:   user.CreatedAt,
		Bio:         deref(user.Bio),
		Company:     deref(user.Company),
		Location:    deref(user.Location),
		Blog:        deref(user.Blog),
	}

	cutoff := f.now().Add(-recentWindow)
	for _, r := range repos {
		stats.TotalStars += r.StargazersCount
		stats.TotalForks += r.ForksCount
		if r.UpdatedAt.After(cutoff) {
			stats.RecentActivity++
		}
	}

	return stats, nil
}

func (f *Fetcher) getJSON(ctx context.Context, rawURL string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &UpstreamError{URL: rawURL, Cause: err}
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", f.userAgent)
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	f.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := f.client.Do(req)
	if err != nil {
		return &UpstreamError{URL: rawURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &UpstreamError{URL: rawURL, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &UpstreamError{URL: rawURL, Status: resp.StatusCode, Cause: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
