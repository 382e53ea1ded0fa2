package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/githubstats"
	"alfredoptarigan/resume-screener/internal/links"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/scoring"
)

// ProfileLookup is satisfied by *githubstats.Fetcher.
type ProfileLookup interface {
	Lookup(ctx context.Context, profileURL string) githubstats.Result
}

type ProfileHandler struct {
	github ProfileLookup
}

func NewProfileHandler(github ProfileLookup) *ProfileHandler {
	return &ProfileHandler{github: github}
}

// HandleExtract handles POST /identifiers/extract
func (h *ProfileHandler) HandleExtract(c *fiber.Ctx) error {
	var req models.ExtractIdentifiersRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return badRequest(models.ValidationMessage(err))
	}

	platforms := []links.Platform{links.GitHub, links.LinkedIn}
	if req.Platform != "" {
		p, _ := links.ParsePlatform(req.Platform)
		platforms = []links.Platform{p}
	}

	return c.JSON(models.IdentifiersResponse{
		Identifiers: links.Collect(platforms, req.Text, req.Links),
	})
}

// HandleGitHubProfile handles GET /github/:username
func (h *ProfileHandler) HandleGitHubProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if !links.ValidGitHubUsername(username) {
		return badRequest("Invalid GitHub username")
	}

	res := h.github.Lookup(c.UserContext(), "https://github.com/"+username)
	switch res.Outcome {
	case githubstats.OutcomeFound:
		return c.JSON(models.GitHubProfileResponse{
			Stats:      res.Stats,
			Reputation: scoring.Reputation(res.Stats),
			FromCache:  res.FromCache,
		})
	case githubstats.OutcomeNotFound:
		return fiber.NewError(fiber.StatusNotFound, "GitHub user not found")
	case githubstats.OutcomeInvalidURL:
		return badRequest("Invalid GitHub username")
	default:
		return fiber.NewError(fiber.StatusBadGateway, "GitHub is unavailable")
	}
}
