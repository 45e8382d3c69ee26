package teamshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"careroster/internal/domain/teams"
	"careroster/internal/transport/http/api"
	"careroster/internal/transport/http/middleware"
	"careroster/internal/transport/http/shared"
)

type TeamService interface {
	List(ctx context.Context, companyID string) ([]teams.TeamView, error)
	Get(ctx context.Context, companyID, id string) (*teams.TeamView, error)
	Create(ctx context.Context, companyID string, in teams.CreateInput) (*teams.TeamView, error)
	Delete(ctx context.Context, companyID, id string) error
}

type Handler struct {
	Teams TeamService
	Log   *zap.Logger
}

func NewHandler(svc TeamService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Teams: svc, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff/team", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}
	views, err := h.Teams.List(r.Context(), companyID)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, views, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}
	var in teams.CreateInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}

	view, err := h.Teams.Create(r.Context(), companyID, in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Created(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}
	view, err := h.Teams.Get(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	companyID, ok := h.company(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Teams.Delete(r.Context(), companyID, id); err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) company(w http.ResponseWriter, r *http.Request) (string, bool) {
	companyID, err := shared.CompanyID(r, "")
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return "", false
	}
	return companyID, true
}
