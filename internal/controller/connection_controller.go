package controller

import (
	"ai-recall-be/internal/dto"
	"ai-recall-be/internal/pkg/serverutils"
	"ai-recall-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConnectionController interface {
	RegisterRoutes(r fiber.Router)
	Connect(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
}

type connectionController struct {
	connectionService service.IConnectionService
}

func NewConnectionController(connectionService service.IConnectionService) IConnectionController {
	return &connectionController{
		connectionService: connectionService,
	}
}

func (c *connectionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/connection/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Connect)
	h.Get("", c.List)
	h.Delete(":source_tag", c.Disconnect)
}

func (c *connectionController) Connect(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ConnectSourceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.connectionService.Connect(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success connect source", res))
}

func (c *connectionController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.connectionService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list connections", res))
}

func (c *connectionController) Disconnect(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sourceTag := ctx.Params("source_tag")

	err := c.connectionService.Disconnect(ctx.Context(), userId, sourceTag)
	if err != nil {
		if err == service.ErrConnectionNotFound {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success disconnect source", nil))
}
