package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	settlementengine "nftmarket/contexts/marketplace/settlement-engine"
	domainerrors "nftmarket/contexts/marketplace/settlement-engine/domain/errors"
	marketplacehttp "nftmarket/contexts/marketplace/settlement-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "nftmarket/internal/platform/httpserver/docs"
)

const accountHeader = "X-Account-Id"

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	marketplace settlementengine.Module
}

func New(marketplace settlementengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		marketplace: marketplace,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/marketplace/collections", s.handleRegisterCollection)
	s.mux.HandleFunc("POST /v1/marketplace/collections/factory", s.handleFactoryCollection)
	s.mux.HandleFunc("GET /v1/marketplace/collections/{collection}", s.handleGetCollection)
	s.mux.HandleFunc("PUT /v1/marketplace/collections/{collection}/metadata", s.handleSetContractMetadata)

	s.mux.HandleFunc("PUT /v1/marketplace/listings/{collection}/{token}", s.handleListToken)
	s.mux.HandleFunc("DELETE /v1/marketplace/listings/{collection}/{token}", s.handleUnlistToken)
	s.mux.HandleFunc("GET /v1/marketplace/listings/{collection}/{token}", s.handleGetPrice)
	s.mux.HandleFunc("POST /v1/marketplace/listings/{collection}/{token}/buy", s.handleBuyToken)

	s.mux.HandleFunc("GET /v1/marketplace/config", s.handleGetConfig)
	s.mux.HandleFunc("PUT /v1/marketplace/config/fee", s.handleSetMarketplaceFee)
	s.mux.HandleFunc("PUT /v1/marketplace/config/fee-recipient", s.handleSetFeeRecipient)
	s.mux.HandleFunc("GET /v1/marketplace/templates/{contract_type}", s.handleGetTemplate)
	s.mux.HandleFunc("PUT /v1/marketplace/templates/{contract_type}", s.handleSetTemplate)
}

func (s *Server) handleListToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.ListTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.ListTokenHandler(r.Context(), caller, r.PathValue("collection"), r.PathValue("token"), req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnlistToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	resp, err := s.marketplace.Handler.UnlistTokenHandler(r.Context(), caller, r.PathValue("collection"), r.PathValue("token"))
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPrice(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetPriceHandler(r.Context(), r.PathValue("collection"), r.PathValue("token"))
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuyToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.BuyTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.BuyTokenHandler(r.Context(), caller, r.PathValue("collection"), r.PathValue("token"), req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.RegisterCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.RegisterCollectionHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleFactoryCollection(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.FactoryCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.FactoryCollectionHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetCollectionHandler(r.Context(), r.PathValue("collection"))
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetContractMetadata(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.SetContractMetadataRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.SetContractMetadataHandler(r.Context(), caller, r.PathValue("collection"), req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetConfigHandler(r.Context())
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetMarketplaceFee(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.SetMarketplaceFeeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.SetMarketplaceFeeHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetFeeRecipient(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.SetFeeRecipientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.SetFeeRecipientHandler(r.Context(), caller, req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetTemplateHandler(r.Context(), r.PathValue("contract_type"))
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req marketplacehttp.SetTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.marketplace.Handler.SetTemplateHandler(r.Context(), caller, r.PathValue("contract_type"), req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMarketplaceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidRequest),
		errors.Is(err, domainerrors.ErrInvalidAmount),
		errors.Is(err, domainerrors.ErrInvalidPrice),
		errors.Is(err, domainerrors.ErrInvalidContractType),
		errors.Is(err, domainerrors.ErrInvalidTemplateHandle):
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrFeeTooHigh):
		writeMarketplaceError(w, http.StatusUnprocessableEntity, "fee_too_high", err.Error())
	case errors.Is(err, domainerrors.ErrArithmeticOverflow):
		writeMarketplaceError(w, http.StatusUnprocessableEntity, "arithmetic_overflow", err.Error())
	case errors.Is(err, domainerrors.ErrCallerIsNotOwner):
		writeMarketplaceError(w, http.StatusForbidden, "caller_is_not_owner", err.Error())
	case errors.Is(err, domainerrors.ErrNotOwner):
		writeMarketplaceError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, domainerrors.ErrBadBuyValue):
		writeMarketplaceError(w, http.StatusPaymentRequired, "bad_buy_value", err.Error())
	case errors.Is(err, domainerrors.ErrItemNotListedForSale):
		writeMarketplaceError(w, http.StatusNotFound, "item_not_listed", err.Error())
	case errors.Is(err, domainerrors.ErrNotRegisteredContract):
		writeMarketplaceError(w, http.StatusNotFound, "not_registered_contract", err.Error())
	case errors.Is(err, domainerrors.ErrTokenDoesNotExist):
		writeMarketplaceError(w, http.StatusNotFound, "token_does_not_exist", err.Error())
	case errors.Is(err, domainerrors.ErrItemAlreadyListedForSale):
		writeMarketplaceError(w, http.StatusConflict, "item_already_listed", err.Error())
	case errors.Is(err, domainerrors.ErrContractAlreadyRegistered):
		writeMarketplaceError(w, http.StatusConflict, "contract_already_registered", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyOwner):
		writeMarketplaceError(w, http.StatusConflict, "already_owner", err.Error())
	case errors.Is(err, domainerrors.ErrReentrantCall):
		writeMarketplaceError(w, http.StatusConflict, "reentrant_call", err.Error())
	case errors.Is(err, domainerrors.ErrNftContractHashNotSet):
		writeMarketplaceError(w, http.StatusPreconditionFailed, "nft_contract_hash_not_set", err.Error())
	case errors.Is(err, domainerrors.ErrUnableToTransferToken),
		errors.Is(err, domainerrors.ErrTransferToOwnerFailed),
		errors.Is(err, domainerrors.ErrTransferToMarketplaceFailed),
		errors.Is(err, domainerrors.ErrTransferToAuthorFailed),
		errors.Is(err, domainerrors.ErrPSP34InstantiationFailed):
		writeMarketplaceError(w, http.StatusBadGateway, "external_call_failed", err.Error())
	case errors.Is(err, domainerrors.ErrConfigNotInitialized):
		writeMarketplaceError(w, http.StatusServiceUnavailable, "config_not_initialized", err.Error())
	default:
		writeMarketplaceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get(accountHeader))
	if caller == "" {
		writeMarketplaceError(w, http.StatusUnauthorized, "missing_account", accountHeader+" header is required")
		return "", false
	}
	return caller, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeMarketplaceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, marketplacehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
