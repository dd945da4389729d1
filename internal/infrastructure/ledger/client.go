// Package ledger is the HTTP adapter for the external ledger backend.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/catalog"
	domain "github.com/opsconsole/backend/internal/domain/ledger"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/opsconsole/backend/internal/domain/trade"
	"github.com/opsconsole/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const maxResponseSize = 10 * 1024 * 1024

// RPC names on the ledger side
const (
	rpcCreateCheckout  = "create_checkout"
	rpcLinkOrderItems  = "link_order_items"
	rpcRestock         = "restock"
	rpcFetchOrderItems = "fetch_order_items"
	rpcFetchProducts   = "fetch_products"
	rpcResolveMembers  = "resolve_members"
	rpcDeleteProduct   = "delete_product"
	rpcDeleteOrderItem = "delete_order_item"
)

// ErrInvalidConfig is returned for an unusable client configuration
var ErrInvalidConfig = errors.New("ledger: invalid client configuration")

// Config configures the ledger client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client calls the ledger's JSON RPC endpoints. It implements every port
// of domain/ledger.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ domain.Ledger = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger.Named("ledger") }
}

// NewClient creates a ledger client
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateCheckout implements domain.CheckoutGateway
func (c *Client) CreateCheckout(ctx context.Context, req domain.CheckoutRequest) shared.Result[uuid.UUID] {
	body := createCheckoutRequest{
		Identity:            req.Identity,
		ReceiverName:        optional(req.ReceiverName),
		ReceiverPhone:       optional(req.ReceiverPhone),
		ReceiverPickupPoint: optional(req.PickupPoint),
		ShippingMethod:      string(req.ShippingMethod),
	}
	var resp createCheckoutResponse
	if failure := c.invoke(ctx, req.TenantID, rpcCreateCheckout, body, &resp); failure != nil {
		return shared.Err[uuid.UUID](failure.Code, failure.Message)
	}
	if resp.CheckoutID == uuid.Nil {
		return shared.Err[uuid.UUID](domain.CodeInvalidResponse, "ledger returned success without checkout_id")
	}
	return shared.Ok(resp.CheckoutID)
}

// LinkOrderItems implements domain.CheckoutGateway
func (c *Client) LinkOrderItems(ctx context.Context, tenantID, checkoutID uuid.UUID, orderItemIDs []uuid.UUID) shared.Result[struct{}] {
	body := linkOrderItemsRequest{CheckoutID: checkoutID, OrderItemIDs: orderItemIDs}
	var resp envelope
	if failure := c.invoke(ctx, tenantID, rpcLinkOrderItems, body, &resp); failure != nil {
		return shared.Err[struct{}](failure.Code, failure.Message)
	}
	return shared.Ok(struct{}{})
}

// Restock implements domain.StockGateway
func (c *Client) Restock(ctx context.Context, tenantID uuid.UUID, sku string, quantity int) shared.Result[domain.RestockOutcome] {
	var resp restockResponse
	if failure := c.invoke(ctx, tenantID, rpcRestock, restockRequest{SKU: sku, Quantity: quantity}, &resp); failure != nil {
		return shared.Err[domain.RestockOutcome](failure.Code, failure.Message)
	}
	return shared.Ok(domain.RestockOutcome{
		Message:        resp.Message,
		AllocatedCount: resp.AllocatedCount,
	})
}

// DeleteProduct implements domain.DeletionGateway
func (c *Client) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) shared.Result[domain.DeleteMode] {
	var resp deleteProductResponse
	if failure := c.invoke(ctx, tenantID, rpcDeleteProduct, deleteRequest{ID: productID}, &resp); failure != nil {
		return shared.Err[domain.DeleteMode](failure.Code, failure.Message)
	}
	switch mode := domain.DeleteMode(resp.Mode); mode {
	case domain.DeleteModeHard, domain.DeleteModeSoft:
		return shared.Ok(mode)
	default:
		return shared.Err[domain.DeleteMode](domain.CodeInvalidResponse, "unknown delete mode: "+resp.Mode)
	}
}

// DeleteOrderItem implements domain.DeletionGateway
func (c *Client) DeleteOrderItem(ctx context.Context, tenantID, orderItemID uuid.UUID) shared.Result[struct{}] {
	var resp envelope
	if failure := c.invoke(ctx, tenantID, rpcDeleteOrderItem, deleteRequest{ID: orderItemID}, &resp); failure != nil {
		return shared.Err[struct{}](failure.Code, failure.Message)
	}
	return shared.Ok(struct{}{})
}

// FetchOrderItems implements domain.RecordSource
func (c *Client) FetchOrderItems(ctx context.Context, tenantID uuid.UUID) ([]trade.OrderItem, error) {
	var resp orderItemsResponse
	if failure := c.invoke(ctx, tenantID, rpcFetchOrderItems, struct{}{}, &resp); failure != nil {
		return nil, fmt.Errorf("ledger: fetch order items: %w", failure)
	}
	items := make([]trade.OrderItem, len(resp.Items))
	for i := range resp.Items {
		items[i] = resp.Items[i].toDomain(tenantID)
	}
	return items, nil
}

// FetchProducts implements domain.RecordSource
func (c *Client) FetchProducts(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	var resp productsResponse
	if failure := c.invoke(ctx, tenantID, rpcFetchProducts, struct{}{}, &resp); failure != nil {
		return nil, fmt.Errorf("ledger: fetch products: %w", failure)
	}
	products := make([]catalog.Product, len(resp.Products))
	for i := range resp.Products {
		products[i] = resp.Products[i].toDomain(tenantID)
	}
	return products, nil
}

// ResolveContacts implements domain.MemberDirectory
func (c *Client) ResolveContacts(ctx context.Context, tenantID uuid.UUID, memberIDs []string) (map[string]trade.Contact, error) {
	var resp resolveMembersResponse
	if failure := c.invoke(ctx, tenantID, rpcResolveMembers, resolveMembersRequest{MemberIDs: memberIDs}, &resp); failure != nil {
		return nil, fmt.Errorf("ledger: resolve members: %w", failure)
	}
	contacts := make(map[string]trade.Contact, len(resp.Members))
	for id, w := range resp.Members {
		contacts[id] = w.toDomain()
	}
	return contacts, nil
}

// invoke posts payload to the named RPC and decodes the reply into out.
// Transport errors, undecodable bodies and {success:false} replies all
// come back as a DomainError; nil means out holds a successful reply.
func (c *Client) invoke(ctx context.Context, tenantID uuid.UUID, name string, payload any, out statusCarrier) *shared.DomainError {
	ctx, span := telemetry.StartClientSpan(ctx, "ledger", name, telemetry.SpanAttrTenantID, tenantID.String())
	defer span.End()

	failure := c.doRequest(ctx, tenantID, name, payload, out)
	if failure != nil {
		telemetry.RecordError(span, failure)
		c.logger.Debug("ledger call failed",
			zap.String("rpc", name),
			zap.String("code", failure.Code),
			zap.String("error", failure.Message),
		)
	}
	return failure
}

func (c *Client) doRequest(ctx context.Context, tenantID uuid.UUID, name string, payload any, out statusCarrier) *shared.DomainError {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return shared.NewDomainError(domain.CodeTransport, fmt.Sprintf("failed to marshal %s request: %v", name, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/"+name, bytes.NewReader(bodyBytes))
	if err != nil {
		return shared.NewDomainError(domain.CodeTransport, fmt.Sprintf("failed to create %s request: %v", name, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID.String())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.NewDomainError(domain.CodeTransport, fmt.Sprintf("%s: %v", name, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return shared.NewDomainError(domain.CodeTransport, fmt.Sprintf("failed to read %s response: %v", name, err))
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode >= 400 {
			return shared.NewDomainError(domain.CodeTransport, fmt.Sprintf("%s: HTTP %d", name, resp.StatusCode))
		}
		return shared.NewDomainError(domain.CodeInvalidResponse, fmt.Sprintf("failed to decode %s response: %v", name, err))
	}

	status := out.status()
	if resp.StatusCode >= 400 && status.Success {
		return shared.NewDomainError(domain.CodeTransport, fmt.Sprintf("%s: HTTP %d", name, resp.StatusCode))
	}
	if !status.Success {
		code := status.ErrorCode
		if code == "" {
			code = domain.CodeRejected
		}
		msg := status.Error
		if msg == "" {
			msg = name + " was rejected by the ledger"
		}
		return shared.NewDomainError(code, msg)
	}
	return nil
}
