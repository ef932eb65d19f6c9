package controller

import (
	"errors"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/dto"
	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/pkg/serverutils"
	"marketplace-billing-be/internal/service"
	"marketplace-billing-be/pkg/gateway"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Webhook(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
}

type paymentController struct {
	reconciler    service.IReconcilerService
	subscriptions service.ISubscriptionService
	logger        logger.ILogger
}

func NewPaymentController(reconciler service.IReconcilerService, subscriptions service.ISubscriptionService, log logger.ILogger) IPaymentController {
	return &paymentController{
		reconciler:    reconciler,
		subscriptions: subscriptions,
		logger:        log,
	}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/notification", c.Webhook)
	h.Get("/status/:transactionId", serverutils.JwtMiddleware, c.GetStatus)
}

func (c *paymentController) GetStatus(ctx *fiber.Ctx) error {
	ownerId, err := ownerIdFromLocals(ctx)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid owner identity")
	}

	res, err := c.subscriptions.GetPaymentStatus(ctx.Context(), ownerId, ctx.Params("transactionId"))
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, res)
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.WebhookNotificationRequest
	if err := ctx.BodyParser(&req); err != nil {
		c.logger.Warn("webhook", "Body parsing failed", map[string]interface{}{"error": err.Error()})
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	notification := &gateway.Notification{
		TransactionId:     req.TransactionId,
		TransactionStatus: req.TransactionStatus,
		StatusCode:        req.StatusCode,
		GrossAmount:       req.GrossAmount,
		SignatureKey:      req.SignatureKey,
		Raw:               append([]byte(nil), ctx.Body()...),
	}

	if err := c.reconciler.Process(ctx.Context(), notification); err != nil {
		var authErr *apperror.AuthenticityError
		if errors.As(err, &authErr) {
			// Forged notification, do not invite retries.
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}
		c.logger.Error("webhook", "Reconciliation failed", map[string]interface{}{
			"transaction_id": req.TransactionId,
			"error":          err.Error(),
		})
		// 500 makes the gateway redeliver; the settlement CAS keeps
		// redelivery safe.
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}

	return ctx.SendStatus(fiber.StatusOK)
}
