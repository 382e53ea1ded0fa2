package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type ArtifactHandler struct {
	store *services.ArtifactStore
}

func NewArtifactHandler(store *services.ArtifactStore) *ArtifactHandler {
	return &ArtifactHandler{store: store}
}

// HandleList handles GET /artifacts?kind=criteria_final|results
func (h *ArtifactHandler) HandleList(c *fiber.Ctx) error {
	kind := services.ArtifactKind(c.Query("kind"))
	switch kind {
	case "", services.ArtifactCriteriaFinal, services.ArtifactResults:
	default:
		return badRequest("kind must be criteria_final or results")
	}

	names, err := h.store.List(kind)
	if err != nil {
		return err
	}
	return c.JSON(models.ArtifactListResponse{Artifacts: names})
}

// HandleGet handles GET /artifacts/:name
func (h *ArtifactHandler) HandleGet(c *fiber.Ctx) error {
	name := c.Params("name")
	data, err := h.store.Read(name)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}
