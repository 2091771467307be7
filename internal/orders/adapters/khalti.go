package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-storefront/internal/orders/domain"
	"go-storefront/internal/orders/ports"
	apperrors "go-storefront/pkg/errors"
	"go-storefront/pkg/logger"
)

// KhaltiConfig configures the Khalti ePayment client
type KhaltiConfig struct {
	BaseURL    string
	SecretKey  string
	AuthScheme string
	ReturnURL  string
	WebsiteURL string
	Timeout    time.Duration

	// Lookups are retried on transport errors and 5xx; initiation never is
	MaxRetries   int
	RetryBackoff time.Duration
}

// KhaltiGateway implements ports.PaymentGateway against the Khalti ePayment API
type KhaltiGateway struct {
	client *http.Client
	cfg    KhaltiConfig
	log    *logger.Logger
}

// NewKhaltiGateway creates a Khalti client
func NewKhaltiGateway(cfg KhaltiConfig, log *logger.Logger) *KhaltiGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Key"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &KhaltiGateway{
		cfg: cfg,
		log: log,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

type khaltiCustomer struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type khaltiInitiateRequest struct {
	ReturnURL         string          `json:"return_url"`
	WebsiteURL        string          `json:"website_url"`
	Amount            int64           `json:"amount"`
	PurchaseOrderID   string          `json:"purchase_order_id"`
	PurchaseOrderName string          `json:"purchase_order_name"`
	CustomerInfo      *khaltiCustomer `json:"customer_info,omitempty"`
}

type khaltiInitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
	ExpiresIn  int    `json:"expires_in"`
}

type khaltiLookupResponse struct {
	Pidx          string  `json:"pidx"`
	TotalAmount   int64   `json:"total_amount"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id"`
	Fee           int64   `json:"fee"`
	Refunded      bool    `json:"refunded"`
}

// Initiate opens a Khalti payment page for the order
func (g *KhaltiGateway) Initiate(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResult, error) {
	body := khaltiInitiateRequest{
		ReturnURL:         g.cfg.ReturnURL,
		WebsiteURL:        g.cfg.WebsiteURL,
		Amount:            req.AmountMinor,
		PurchaseOrderID:   req.OrderID,
		PurchaseOrderName: req.OrderName,
	}
	if req.CustomerName != "" || req.CustomerPhone != "" {
		body.CustomerInfo = &khaltiCustomer{Name: req.CustomerName, Phone: req.CustomerPhone}
	}

	status, raw, err := g.post(ctx, "/epayment/initiate/", body)
	if err != nil {
		return nil, apperrors.NewGatewayUnavailable("failed to reach payment gateway", err)
	}
	if status != http.StatusOK {
		return nil, apperrors.NewGatewayUnavailable("payment gateway rejected initiation", providerError(status, raw))
	}

	var resp khaltiInitiateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperrors.NewGatewayUnavailable("invalid payment gateway response", err)
	}
	if resp.Pidx == "" || resp.PaymentURL == "" {
		return nil, apperrors.NewGatewayUnavailable("invalid payment gateway response", fmt.Errorf("missing pidx or payment_url"))
	}

	result := &ports.InitiateResult{ExternalRef: resp.Pidx, RedirectURL: resp.PaymentURL}
	if t, err := time.Parse(time.RFC3339Nano, resp.ExpiresAt); err == nil {
		result.ExpiresAt = t
	} else if resp.ExpiresIn > 0 {
		result.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	g.log.WithContext(ctx).Debug("khalti payment initiated",
		zap.String("pidx", resp.Pidx),
		zap.String("order_id", req.OrderID),
	)
	return result, nil
}

// Verify looks up a Khalti transaction by pidx
func (g *KhaltiGateway) Verify(ctx context.Context, pidx string) (*ports.Transaction, error) {
	var (
		status int
		raw    []byte
		err    error
	)
	for attempt := 0; ; attempt++ {
		status, raw, err = g.post(ctx, "/epayment/lookup/", map[string]string{"pidx": pidx})
		if err == nil && status < http.StatusInternalServerError {
			break
		}
		if err == nil {
			err = providerError(status, raw)
		}
		g.log.WithContext(ctx).Warn("khalti lookup failed",
			zap.Error(err),
			zap.String("pidx", pidx),
			zap.Int("attempt", attempt+1),
		)
		if attempt >= g.cfg.MaxRetries {
			return nil, apperrors.NewGatewayUnavailable("payment gateway unavailable", err)
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.NewGatewayUnavailable("payment gateway lookup cancelled", ctx.Err())
		case <-time.After(time.Duration(attempt+1) * g.cfg.RetryBackoff):
		}
	}

	// Expired and cancelled lookups come back as 400 with a status in the body.
	var resp khaltiLookupResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Status == "" {
		return nil, apperrors.NewGatewayUnavailable("payment gateway rejected lookup", providerError(status, raw))
	}

	txn := &ports.Transaction{
		ExternalRef: pidx,
		State:       khaltiState(resp.Status),
		AmountMinor: resp.TotalAmount,
		FeeMinor:    resp.Fee,
		Refunded:    resp.Refunded,
	}
	if resp.TransactionID != nil {
		txn.TransactionID = *resp.TransactionID
	}
	return txn, nil
}

func (g *KhaltiGateway) post(ctx context.Context, path string, body interface{}) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", g.cfg.AuthScheme+" "+g.cfg.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// khaltiState maps Khalti lookup statuses onto transaction states
func khaltiState(status string) domain.TransactionState {
	switch status {
	case "Completed":
		return domain.TransactionCompleted
	case "Pending":
		return domain.TransactionPending
	case "Initiated":
		return domain.TransactionInitiated
	case "Refunded", "Partially Refunded":
		return domain.TransactionRefunded
	case "Expired":
		return domain.TransactionExpired
	case "User canceled", "Canceled", "Cancelled":
		return domain.TransactionCancelled
	default:
		return domain.TransactionState(status)
	}
}

func providerError(status int, raw []byte) error {
	detail := strings.TrimSpace(string(raw))
	if len(detail) > 256 {
		detail = detail[:256]
	}
	return fmt.Errorf("khalti responded %d: %s", status, detail)
}
