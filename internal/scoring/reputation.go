// Package scoring turns profile statistics and criterion answers into
// candidate scores and screening groups.
package scoring

import (
	"math"

	"alfredoptarigan/resume-screener/internal/githubstats"
)

type component struct {
	cap    float64
	points float64
	value  func(githubstats.Stats) int
}

var reputationComponents = []component{
	{cap: 50, points: 20, value: func(s githubstats.Stats) int { return s.PublicRepos }},
	{cap: 500, points: 25, value: func(s githubstats.Stats) int { return s.TotalStars }},
	{cap: 100, points: 15, value: func(s githubstats.Stats) int { return s.Followers }},
	{cap: 20, points: 20, value: func(s githubstats.Stats) int { return s.RecentActivity }},
	{cap: 100, points: 10, value: func(s githubstats.Stats) int { return s.TotalForks }},
}

const completenessPoints = 2

// Reputation scores a GitHub profile from 0 to 100. Every signal is capped, so
// no single metric can dominate. Empty stats score 0.
func Reputation(s githubstats.Stats) float64 {
	if s.IsEmpty() {
		return 0
	}

	var total float64
	for _, c := range reputationComponents {
		v := math.Max(0, float64(c.value(s)))
		total += math.Min(v, c.cap) / c.cap * c.points
	}

	for _, filled := range []bool{s.Bio != "", s.Company != "", s.Location != "", s.Blog != "", s.PublicRepos > 0} {
		if filled {
			total += completenessPoints
		}
	}

	return math.Min(round1(total), 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
