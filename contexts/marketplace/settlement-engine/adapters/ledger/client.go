package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"

	"nftmarket/contexts/marketplace/settlement-engine/domain/entities"
	"nftmarket/contexts/marketplace/settlement-engine/ports"
)

const (
	logModule          = "marketplace/settlement-engine"
	idempotencyHeader  = "Idempotency-Key"
	defaultOwnerTTL    = 30 * time.Second
	defaultRetryMax    = 3
	defaultHTTPTimeout = 10 * time.Second
)

var ErrLedgerUnavailable = errors.New("ledger request failed")

// StatusError is returned for a non-success ledger response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ledger %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

type Config struct {
	BaseURL       string
	OwnerCacheTTL time.Duration
	RetryMax      int
	Timeout       time.Duration
	Logger        *slog.Logger
}

// Client talks to the token ledger service over HTTP. It implements
// ports.TokenRegistry and ports.CollectionDeployer; Payments returns the
// ports.ValueTransfer view. Reads are retried on transient failures. Mutating
// calls are sent once with an idempotency key and every failure goes back to
// the caller.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	writes  *retryablehttp.Client
	owners  *cache.Cache
	logger  *slog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("ledger base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse ledger base url: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.OwnerCacheTTL
	if ttl <= 0 {
		ttl = defaultOwnerTTL
	}
	retryMax := cfg.RetryMax
	if retryMax <= 0 {
		retryMax = defaultRetryMax
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 50 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = logger.With("module", logModule, "layer", "adapter", "component", "ledger_client")

	writeClient := retryablehttp.NewClient()
	writeClient.RetryMax = 0
	writeClient.HTTPClient.Timeout = timeout
	writeClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	writeClient.Logger = retryClient.Logger

	return &Client{
		baseURL: baseURL,
		http:    retryClient,
		writes:  writeClient,
		owners:  cache.New(ttl, 2*ttl),
		logger:  logger,
	}, nil
}

type ownerResponse struct {
	Owner string `json:"owner"`
}

func (c *Client) OwnerOf(ctx context.Context, collection entities.AccountID, token entities.TokenID) (entities.AccountID, bool, error) {
	path := fmt.Sprintf("/collections/%s/tokens/%s/owner", url.PathEscape(string(collection)), url.PathEscape(string(token)))
	var body ownerResponse
	found, err := c.do(ctx, http.MethodGet, path, nil, &body)
	if err != nil || !found || body.Owner == "" {
		return "", false, err
	}
	return entities.AccountID(body.Owner), true, nil
}

// CollectionOwner is cached; collection ownership changes rarely and the
// lookup sits on the registration path only.
func (c *Client) CollectionOwner(ctx context.Context, collection entities.AccountID) (entities.AccountID, bool, error) {
	key := string(collection)
	if cached, found := c.owners.Get(key); found {
		return cached.(entities.AccountID), true, nil
	}

	path := fmt.Sprintf("/collections/%s/owner", url.PathEscape(key))
	var body ownerResponse
	found, err := c.do(ctx, http.MethodGet, path, nil, &body)
	if err != nil || !found || body.Owner == "" {
		return "", false, err
	}
	owner := entities.AccountID(body.Owner)
	c.owners.Set(key, owner, cache.DefaultExpiration)
	return owner, true, nil
}

type tokenTransferRequest struct {
	To   string `json:"to"`
	Data string `json:"data,omitempty"`
}

func (c *Client) Transfer(
	ctx context.Context,
	collection entities.AccountID,
	to entities.AccountID,
	token entities.TokenID,
	data []byte,
) error {
	path := fmt.Sprintf("/collections/%s/tokens/%s/transfer", url.PathEscape(string(collection)), url.PathEscape(string(token)))
	return c.mustDo(ctx, http.MethodPost, path, tokenTransferRequest{
		To:   string(to),
		Data: hex.EncodeToString(data),
	}, nil)
}

type valueRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

func (c *Client) TransferValue(ctx context.Context, to entities.AccountID, amount *big.Int) error {
	return c.mustDo(ctx, http.MethodPost, "/payments/transfers", valueRequest{
		Account: string(to),
		Amount:  amount.String(),
	}, nil)
}

func (c *Client) Reclaim(ctx context.Context, from entities.AccountID, amount *big.Int) error {
	return c.mustDo(ctx, http.MethodPost, "/payments/reclaims", valueRequest{
		Account: string(from),
		Amount:  amount.String(),
	}, nil)
}

func (c *Client) Payments() ports.ValueTransfer {
	return payments{client: c}
}

type instantiateRequest struct {
	Template        string `json:"template"`
	ContractType    string `json:"contract_type"`
	Salt            string `json:"salt"`
	Endowment       string `json:"endowment"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	BaseURI         string `json:"base_uri"`
	MaxSupply       uint64 `json:"max_supply"`
	PricePerMint    string `json:"price_per_mint"`
	MetadataURI     string `json:"metadata_uri"`
	RoyaltyReceiver string `json:"royalty_receiver"`
	RoyaltyBPS      uint16 `json:"royalty_bps"`
}

type instantiateResponse struct {
	Collection string `json:"collection"`
}

func (c *Client) Instantiate(ctx context.Context, req ports.InstantiateRequest) (entities.AccountID, error) {
	pricePerMint := "0"
	if req.Args.PricePerMint != nil {
		pricePerMint = req.Args.PricePerMint.String()
	}
	endowment := "0"
	if req.Endowment != nil {
		endowment = req.Endowment.String()
	}

	var body instantiateResponse
	err := c.mustDo(ctx, http.MethodPost, "/collections/instantiate", instantiateRequest{
		Template:        req.Template.String(),
		ContractType:    string(req.ContractType),
		Salt:            "0x" + hex.EncodeToString(req.Salt[:]),
		Endowment:       endowment,
		Name:            req.Args.Name,
		Symbol:          req.Args.Symbol,
		BaseURI:         req.Args.BaseURI,
		MaxSupply:       req.Args.MaxSupply,
		PricePerMint:    pricePerMint,
		MetadataURI:     req.Args.MetadataURI,
		RoyaltyReceiver: string(req.Args.RoyaltyReceiver),
		RoyaltyBPS:      uint16(req.Args.Royalty),
	}, &body)
	if err != nil {
		return "", err
	}
	return entities.AccountID(body.Collection), nil
}

func (c *Client) mustDo(ctx context.Context, method string, path string, payload any, out any) error {
	found, err := c.do(ctx, method, path, payload, out)
	if err != nil {
		return err
	}
	if !found {
		return &StatusError{Method: method, Path: path, Status: http.StatusNotFound, Body: "not found"}
	}
	return nil
}

// do reports found=false for 404 and an error for any other non-2xx status.
func (c *Client) do(ctx context.Context, method string, path string, payload any, out any) (bool, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return false, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	client := c.http
	if method != http.MethodGet {
		req.Header.Set(idempotencyHeader, uuid.NewString())
		client = c.writes
	}

	resp, err := client.Do(req)
	if err != nil {
		c.logger.Error("ledger request failed",
			"event", "marketplace_ledger_request_failed",
			"module", logModule,
			"layer", "adapter",
			"method", method,
			"path", path,
			"error", err.Error(),
		)
		return false, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, &StatusError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode ledger response: %w", err)
	}
	return true, nil
}

type payments struct {
	client *Client
}

func (p payments) Transfer(ctx context.Context, to entities.AccountID, amount *big.Int) error {
	return p.client.TransferValue(ctx, to, amount)
}

func (p payments) Reclaim(ctx context.Context, from entities.AccountID, amount *big.Int) error {
	return p.client.Reclaim(ctx, from, amount)
}
