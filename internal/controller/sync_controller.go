package controller

import (
	"ai-recall-be/internal/dto"
	"ai-recall-be/internal/pkg/serverutils"
	"ai-recall-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router)
	Trigger(ctx *fiber.Ctx) error
	TriggerAsync(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type syncController struct {
	syncService service.ISyncService
}

func NewSyncController(syncService service.ISyncService) ISyncController {
	return &syncController{
		syncService: syncService,
	}
}

func (c *syncController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("trigger", c.Trigger)
	h.Post("trigger-async", c.TriggerAsync)
	h.Get("status", c.Status)
}

// Trigger runs a sync inline and returns its outcome. Useful for
// debugging a connection; the async variant is what clients poll with.
func (c *syncController) Trigger(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.TriggerSyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.syncService.TriggerSync(ctx.Context(), userId, req.SourceTag)
	if err != nil {
		return mapSyncError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Sync finished", res))
}

func (c *syncController) TriggerAsync(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.TriggerSyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.syncService.TriggerSyncAsync(ctx.Context(), userId, req.SourceTag)
	if err != nil {
		return mapSyncError(err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Sync queued", res))
}

func (c *syncController) Status(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.syncService.Status(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get sync status", res))
}

func mapSyncError(err error) error {
	switch err {
	case service.ErrSyncInFlight:
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case service.ErrSourceNotPollable, service.ErrUnknownSource:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case service.ErrConnectionNotFound:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}
