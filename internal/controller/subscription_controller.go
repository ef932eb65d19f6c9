package controller

import (
	"marketplace-billing-be/internal/dto"
	"marketplace-billing-be/internal/pkg/serverutils"
	"marketplace-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	GetPlans(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
	StartTrial(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
	Renew(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
}

func NewSubscriptionController(svc service.ISubscriptionService) ISubscriptionController {
	return &subscriptionController{service: svc}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/subscription")
	h.Get("/plans", c.GetPlans)

	// Protected Routes
	h.Get("/status", serverutils.JwtMiddleware, c.GetStatus)
	h.Post("/trial", serverutils.JwtMiddleware, c.StartTrial)
	h.Post("/checkout", serverutils.JwtMiddleware, c.Checkout)
	h.Post("/renew", serverutils.JwtMiddleware, c.Renew)
	h.Post("/cancel", serverutils.JwtMiddleware, c.Cancel)
}

func ownerIdFromLocals(ctx *fiber.Ctx) (uuid.UUID, error) {
	ownerIdStr, _ := ctx.Locals("owner_id").(string)
	return uuid.Parse(ownerIdStr)
}

func (c *subscriptionController) GetPlans(ctx *fiber.Ctx) error {
	res := c.service.GetPlans(ctx.Context())
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, res)
}

func (c *subscriptionController) GetStatus(ctx *fiber.Ctx) error {
	ownerId, err := ownerIdFromLocals(ctx)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid owner identity")
	}

	res, err := c.service.GetStatus(ctx.Context(), ownerId)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, res)
}

func (c *subscriptionController) StartTrial(ctx *fiber.Ctx) error {
	ownerId, err := ownerIdFromLocals(ctx)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid owner identity")
	}

	res, err := c.service.CreateTrial(ctx.Context(), ownerId)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, res)
}

func (c *subscriptionController) Checkout(ctx *fiber.Ctx) error {
	ownerId, err := ownerIdFromLocals(ctx)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid owner identity")
	}

	var req dto.CheckoutRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Checkout(ctx.Context(), ownerId, &req)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, res)
}

func (c *subscriptionController) Renew(ctx *fiber.Ctx) error {
	ownerId, err := ownerIdFromLocals(ctx)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid owner identity")
	}

	var req dto.RenewRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Renew(ctx.Context(), ownerId, &req)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, res)
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	ownerId, err := ownerIdFromLocals(ctx)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid owner identity")
	}

	var req dto.CancelRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	if err := c.service.Cancel(ctx.Context(), ownerId, &req); err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, fiber.Map{"cancelled": true})
}
