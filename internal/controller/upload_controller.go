package controller

import (
	"ai-recall-be/internal/dto"
	"ai-recall-be/internal/pkg/serverutils"
	"ai-recall-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	UploadSnapshot(ctx *fiber.Ctx) error
}

type uploadController struct {
	syncService service.ISyncService
}

func NewUploadController(syncService service.ISyncService) IUploadController {
	return &uploadController{
		syncService: syncService,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("snapshot", c.UploadSnapshot)
}

// UploadSnapshot ingests a parsed Pocket export. The snapshot fully
// replaces whatever was mirrored for that source before.
func (c *uploadController) UploadSnapshot(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.UploadSnapshotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.syncService.UploadSnapshot(ctx.Context(), userId, req.Entries)
	if err != nil {
		return mapSyncError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Snapshot ingested", res))
}
