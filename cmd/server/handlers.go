package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/moveops/internal/apperr"
	"github.com/Simplici0/moveops/internal/extras"
	"github.com/Simplici0/moveops/internal/httpx"
	"github.com/Simplici0/moveops/internal/margin"
	"github.com/Simplici0/moveops/internal/observability"
	"github.com/Simplici0/moveops/internal/pricing"
	"github.com/Simplici0/moveops/internal/quotes"
	"github.com/Simplici0/moveops/internal/ratecard"
	"github.com/Simplici0/moveops/internal/store"
)

type server struct {
	store         *store.Manager
	quotes        *quotes.Repository
	logger        *zap.Logger
	schemaVersion func() (int64, error)
}

type createQuoteInput struct {
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	Request   pricing.Request `json:"request"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(observability.Recoverer(s.logger))

	r.Get("/health", s.handleHealth)

	r.Post("/quotes/calculate", s.handleCalculate)
	r.Post("/quotes", s.handleCreateQuote)
	r.Get("/quotes", s.handleQuotesList)
	r.Get("/quotes/{id}", s.handleQuoteDetail)
	r.Get("/quotes/{id}/text", s.handleQuoteText)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/quotes/preview", s.handleAdminPreview)
		r.Get("/config", s.handleAdminConfig)
		r.Patch("/rate-cards/{serviceType}/tiers/{tierID}", s.handleAdminRateCardUpdate)
		r.Patch("/extras/{extraID}", s.handleAdminExtraUpdate)
		r.Patch("/margin-policy", s.handleAdminMarginUpdate)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	if s.schemaVersion != nil {
		if v, err := s.schemaVersion(); err == nil {
			payload["schemaVersion"] = v
		}
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

// decodeQuoteRequest reads a pricing request body. Only malformed JSON is rejected here;
// an incomplete request is a valid "no quote yet" input for the engine.
func decodeQuoteRequest(r *http.Request) (pricing.Request, error) {
	var req pricing.Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return pricing.Request{}, err
	}
	req.ServiceType = strings.TrimSpace(req.ServiceType)
	req.SelectedVehicle = strings.TrimSpace(req.SelectedVehicle)
	return req, nil
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuoteRequest(r)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	quote, err := pricing.Calculate(req, s.store.Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"quote": quote})
}

func (s *server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var in createQuoteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	quote, err := pricing.Calculate(in.Request, s.store.Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if quote == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("incomplete_request", "pickup, dropoff and a valid distance are required to save a quote", http.StatusUnprocessableEntity))
		return
	}

	rec, err := s.quotes.Save(r.Context(), quotes.Record{
		Reference: in.Reference,
		Notes:     in.Notes,
		Request:   in.Request,
		Breakdown: *quote,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	list, err := s.quotes.List(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"query": query, "quotes": list})
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	rec, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rec)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	rec, err := s.quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(quotes.RenderText(rec)))
}

func (s *server) handleAdminPreview(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuoteRequest(r)
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	preview, err := pricing.PreviewQuote(req, s.store.Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, preview)
}

func (s *server) handleAdminConfig(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *server) handleAdminRateCardUpdate(w http.ResponseWriter, r *http.Request) {
	var patch ratecard.Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	serviceType := chi.URLParam(r, "serviceType")
	snap, err := s.store.UpdateRateCard(r.Context(), serviceType, chi.URLParam(r, "tierID"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	card, _, _ := snap.RateCards.Resolve(serviceType)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"rateCard": card})
}

func (s *server) handleAdminExtraUpdate(w http.ResponseWriter, r *http.Request) {
	var patch extras.Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	extraID := chi.URLParam(r, "extraID")
	snap, err := s.store.UpdateExtra(r.Context(), extraID, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"extra": snap.Extras[extraID]})
}

func (s *server) handleAdminMarginUpdate(w http.ResponseWriter, r *http.Request) {
	var patch margin.Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		writeBadRequest(w, r, err)
		return
	}

	snap, err := s.store.UpdateMarginPolicy(r.Context(), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"marginPolicy": snap.Margin})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(r.Context(), w, httpx.NewError("invalid_json", err.Error(), http.StatusBadRequest))
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *apperr.ValidationError
	switch {
	case errors.As(err, &validation):
		httpx.WriteError(r.Context(), w, httpx.NewError("validation_failed", validation.Error(), http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"store": validation.Store, "field": validation.Field}))
	case errors.Is(err, apperr.ErrConfiguration):
		s.logger.Error("pricing configuration cannot produce quotes", zap.Error(err))
		httpx.WriteError(r.Context(), w, httpx.NewError("configuration_error", err.Error(), http.StatusServiceUnavailable))
	case errors.Is(err, quotes.ErrNotFound):
		httpx.WriteError(r.Context(), w, httpx.NewError("not_found", err.Error(), http.StatusNotFound))
	default:
		s.logger.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		httpx.WriteError(r.Context(), w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}
