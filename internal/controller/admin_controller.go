package controller

import (
	"time"

	"marketplace-billing-be/internal/dto"
	"marketplace-billing-be/internal/entity"
	"marketplace-billing-be/internal/pkg/serverutils"
	"marketplace-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetWallet(ctx *fiber.Ctx) error
	CreateWithdrawal(ctx *fiber.Ctx) error
	CompleteWithdrawal(ctx *fiber.Ctx) error
	CancelWithdrawal(ctx *fiber.Ctx) error
	ListWithdrawals(ctx *fiber.Ctx) error
	GetStats(ctx *fiber.Ctx) error
	RebuildStats(ctx *fiber.Ctx) error
	RunSweep(ctx *fiber.Ctx) error
}

type adminController struct {
	wallet        service.IWalletService
	stats         service.IStatsService
	subscriptions service.ISubscriptionService
}

func NewAdminController(wallet service.IWalletService, stats service.IStatsService, subscriptions service.ISubscriptionService) IAdminController {
	return &adminController{
		wallet:        wallet,
		stats:         stats,
		subscriptions: subscriptions,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", serverutils.JwtMiddleware, serverutils.AdminOnly)
	h.Get("/wallet", c.GetWallet)
	h.Get("/withdrawals", c.ListWithdrawals)
	h.Post("/withdrawals", c.CreateWithdrawal)
	h.Post("/withdrawals/:reference/complete", c.CompleteWithdrawal)
	h.Post("/withdrawals/:reference/cancel", c.CancelWithdrawal)
	h.Get("/stats", c.GetStats)
	h.Post("/stats/rebuild", c.RebuildStats)
	h.Post("/sweep", c.RunSweep)
}

func (c *adminController) GetWallet(ctx *fiber.Ctx) error {
	wallet, err := c.wallet.GetWallet(ctx.Context())
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, &dto.WalletResponse{
		TotalBalance:      wallet.TotalBalance,
		AvailableBalance:  wallet.AvailableBalance,
		PendingBalance:    wallet.PendingBalance,
		WithdrawnBalance:  wallet.WithdrawnBalance,
		LastTransactionAt: wallet.LastTransactionAt,
		LastWithdrawalAt:  wallet.LastWithdrawalAt,
	})
}

func toWithdrawalResponse(w *entity.WithdrawalRequest) *dto.WithdrawalResponse {
	return &dto.WithdrawalResponse{
		Reference:         w.Reference,
		Amount:            w.Amount,
		Provider:          w.Provider,
		DestinationNumber: w.DestinationNumber,
		Status:            string(w.Status),
		ReservedAt:        w.ReservedAt,
		ProcessedAt:       w.ProcessedAt,
	}
}

func (c *adminController) CreateWithdrawal(ctx *fiber.Ctx) error {
	var req dto.WithdrawalCreateRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	withdrawal, err := c.wallet.ReserveWithdrawal(ctx.Context(), &req)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, toWithdrawalResponse(withdrawal))
}

func (c *adminController) CompleteWithdrawal(ctx *fiber.Ctx) error {
	reference := ctx.Params("reference")

	var req dto.WithdrawalSettleRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	withdrawal, err := c.wallet.CompleteWithdrawal(ctx.Context(), reference, req.ProviderRef)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, toWithdrawalResponse(withdrawal))
}

func (c *adminController) CancelWithdrawal(ctx *fiber.Ctx) error {
	reference := ctx.Params("reference")

	var req dto.WithdrawalSettleRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	withdrawal, err := c.wallet.CancelWithdrawal(ctx.Context(), reference, req.ErrorMessage)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, toWithdrawalResponse(withdrawal))
}

func (c *adminController) ListWithdrawals(ctx *fiber.Ctx) error {
	status := ctx.Query("status")
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	withdrawals, err := c.wallet.ListWithdrawals(ctx.Context(), status, limit, offset)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}

	res := make([]*dto.WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		res[i] = toWithdrawalResponse(w)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, res)
}

func (c *adminController) GetStats(ctx *fiber.Ctx) error {
	from, err := time.Parse("2006-01-02", ctx.Query("from"))
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", ctx.Query("to"))
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}

	rows, err := c.stats.GetRange(ctx.Context(), from, to)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}

	res := make([]*dto.DailyStatsResponse, len(rows))
	for i, row := range rows {
		res[i] = &dto.DailyStatsResponse{
			Date:             row.Date.Format("2006-01-02"),
			Revenue:          row.Revenue,
			NewSubscriptions: row.NewSubscriptions,
			MonthlyCount:     row.MonthlyCount,
			QuarterlyCount:   row.QuarterlyCount,
			BiannualCount:    row.BiannualCount,
			AnnualCount:      row.AnnualCount,
		}
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, res)
}

func (c *adminController) RebuildStats(ctx *fiber.Ctx) error {
	day, err := time.Parse("2006-01-02", ctx.Query("date"))
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	row, err := c.stats.Rebuild(ctx.Context(), day)
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	if row == nil {
		return serverutils.SuccessResponse(ctx, fiber.StatusOK, nil)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, &dto.DailyStatsResponse{
		Date:             row.Date.Format("2006-01-02"),
		Revenue:          row.Revenue,
		NewSubscriptions: row.NewSubscriptions,
		MonthlyCount:     row.MonthlyCount,
		QuarterlyCount:   row.QuarterlyCount,
		BiannualCount:    row.BiannualCount,
		AnnualCount:      row.AnnualCount,
	})
}

func (c *adminController) RunSweep(ctx *fiber.Ctx) error {
	count, err := c.subscriptions.SweepExpirations(ctx.Context())
	if err != nil {
		return serverutils.MapError(ctx, err)
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, &dto.SweepResponse{Expired: count})
}
