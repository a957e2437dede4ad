package controller

import (
	"collab-workspace-be/internal/dto"
	"collab-workspace-be/internal/pkg/serverutils"
	"collab-workspace-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICollaboratorController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Add(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
}

type collaboratorController struct {
	service service.ICollaboratorService
}

func NewCollaboratorController(service service.ICollaboratorService) ICollaboratorController {
	return &collaboratorController{service: service}
}

func (c *collaboratorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/collaborator/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll) // ?workspace_id=...
	h.Post("", c.Add)
	h.Delete("", c.Remove)
}

func (c *collaboratorController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	workspaceId, err := uuid.Parse(ctx.Query("workspace_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "workspace_id is required")
	}

	res, err := c.service.GetAll(ctx.Context(), userId, workspaceId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all collaborators", res))
}

func (c *collaboratorController) Add(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AddCollaboratorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Add(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add collaborator", res))
}

func (c *collaboratorController) Remove(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.RemoveCollaboratorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Remove(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success remove collaborator", nil))
}
