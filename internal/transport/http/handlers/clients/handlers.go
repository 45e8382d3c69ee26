package clientshandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"careroster/internal/domain/people"
	"careroster/internal/transport/http/api"
	"careroster/internal/transport/http/middleware"
	"careroster/internal/transport/http/shared"
)

type PublicInfoService interface {
	GetPublicInformation(ctx context.Context, userID string) (*people.PublicInformation, error)
	SavePublicInformation(ctx context.Context, userID string, in people.PublicInfoInput) (*people.PublicInformation, error)
}

type Handler struct {
	Info PublicInfoService
	Log  *zap.Logger
}

func NewHandler(info PublicInfoService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Info: info, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/client/public-information", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Post("/", h.handleSave)
		r.Put("/", h.handleSave)
	})
}

func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.URL.Query().Get("userId"))
	v := shared.NewValidator()
	v.Required("userId", id, "userId is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return "", false
	}
	return id, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	info, err := h.Info.GetPublicInformation(r.Context(), id)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, info, middleware.GetRequestID(r.Context()))
}

// handleSave serves both POST and PUT; the row is upserted on the client id.
func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var in people.PublicInfoInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}

	info, err := h.Info.SavePublicInformation(r.Context(), id, in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	if r.Method == http.MethodPost {
		api.Created(w, info, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, info, middleware.GetRequestID(r.Context()))
}
