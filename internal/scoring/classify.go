package scoring

import (
	"math"
)

type Group string

const (
	GroupStronglyConsider Group = "strongly_consider"
	GroupPotentialFit     Group = "potential_fit"
	GroupRejected         Group = "rejected"
)

// Rank orders groups for sorting, best first.
func (g Group) Rank() int {
	switch g {
	case GroupStronglyConsider:
		return 0
	case GroupPotentialFit:
		return 1
	}
	return 2
}

func (g Group) Label() string {
	switch g {
	case GroupStronglyConsider:
		return "Strongly Consider"
	case GroupPotentialFit:
		return "Potential Fit"
	case GroupRejected:
		return "Rejected"
	}
	return string(g)
}

const (
	ReasonGitHubMissing = "GitHub missing and GitHub is required."
	ReasonNoneMet       = "Rejected: none of the criteria were met."
	ReasonAllMet        = "Strongly consider: all criteria were met."
	ReasonMajorityMet   = "Potential fit: majority of criteria were met."
	ReasonMinorityMet   = "Rejected: fewer than half of the criteria were met."
)

// Classify places a resume in a group. The rules are a priority chain and the
// first matching rule wins.
func Classify(yesCount, totalCriteria int, githubRequired, hasValidGitHub bool) (Group, string) {
	switch {
	case githubRequired && !hasValidGitHub:
		return GroupRejected, ReasonGitHubMissing
	case yesCount <= 0:
		return GroupRejected, ReasonNoneMet
	case yesCount >= totalCriteria:
		return GroupStronglyConsider, ReasonAllMet
	case yesCount >= (totalCriteria+1)/2:
		return GroupPotentialFit, ReasonMajorityMet
	default:
		return GroupRejected, ReasonMinorityMet
	}
}

// WeightedYesScore is the share of criterion weight answered "yes", rounded to
// four decimals. Answers for unknown criteria are ignored.
func WeightedYesScore(yes map[string]bool, weights map[string]float64) float64 {
	var total, earned float64
	for id, w := range weights {
		total += w
		if yes[id] {
			earned += w
		}
	}
	if total <= 0 {
		return 0
	}
	return math.Round(earned/total*10000) / 10000
}

// WeightedGroup buckets a weighted yes score. It is reported next to the
// Classify result and does not replace it.
func WeightedGroup(score float64) Group {
	switch {
	case score >= 0.75:
		return GroupStronglyConsider
	case score >= 0.5:
		return GroupPotentialFit
	default:
		return GroupRejected
	}
}
