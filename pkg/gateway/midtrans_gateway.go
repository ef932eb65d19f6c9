package gateway

import (
	"context"
	"strconv"
	"time"

	"marketplace-billing-be/internal/apperror"
	"marketplace-billing-be/internal/entity"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransConfig struct {
	ServerKey    string
	IsProduction bool
	FinishURL    string
	Timeout      time.Duration
}

// MidtransGateway talks to the external provider through its Snap API.
type MidtransGateway struct {
	snapClient snap.Client
	coreClient coreapi.Client
	cfg        MidtransConfig
}

func NewMidtransGateway(cfg MidtransConfig) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	g := &MidtransGateway{cfg: cfg}
	g.snapClient.New(cfg.ServerKey, env)
	g.coreClient.New(cfg.ServerKey, env)
	return g
}

func (g *MidtransGateway) Name() entity.PaymentProvider {
	return entity.ProviderMidtrans
}

func (g *MidtransGateway) CreateCheckout(ctx context.Context, payment *entity.Payment, customer Customer, description string) (*CheckoutSession, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  payment.TransactionId,
			GrossAmt: payment.Amount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: g.cfg.FinishURL,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.FullName,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    payment.SubscriptionId.String(),
				Price: payment.Amount,
				Qty:   1,
				Name:  description,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
		Expiry: &snap.ExpiryDetails{
			Unit:     "minute",
			Duration: 30,
		},
	}

	snapResp, midErr := g.snapClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, &apperror.GatewayError{
			Provider: string(entity.ProviderMidtrans),
			Code:     strconv.Itoa(midErr.GetStatusCode()),
			Message:  midErr.GetMessage(),
			Err:      midErr.GetRawError(),
		}
	}

	expiresAt := time.Now().Add(30 * time.Minute)
	return &CheckoutSession{
		TransactionId: payment.TransactionId,
		Token:         snapResp.Token,
		RedirectURL:   snapResp.RedirectURL,
		ExpiresAt:     &expiresAt,
	}, nil
}

func (g *MidtransGateway) CheckStatus(ctx context.Context, transactionId string) (entity.PaymentState, error) {
	resp, midErr := g.coreClient.CheckTransaction(transactionId)
	if midErr != nil {
		return "", &apperror.GatewayError{
			Provider: string(entity.ProviderMidtrans),
			Code:     strconv.Itoa(midErr.GetStatusCode()),
			Message:  midErr.GetMessage(),
			Err:      midErr.GetRawError(),
		}
	}

	switch resp.TransactionStatus {
	case "capture", "settlement":
		return entity.PaymentStateSuccess, nil
	case "deny", "cancel", "expire", "failure":
		return entity.PaymentStateFailed, nil
	default:
		return entity.PaymentStatePending, nil
	}
}
