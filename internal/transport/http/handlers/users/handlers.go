package usershandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"careroster/internal/domain/people"
	"careroster/internal/transport/http/api"
	"careroster/internal/transport/http/middleware"
	"careroster/internal/transport/http/shared"
)

// RecordService is the part of the people service the staff-or-client routes
// use.
type RecordService interface {
	Create(ctx context.Context, in people.CreateInput) (people.Record, error)
	Get(ctx context.Context, id string, skipCache bool) (people.Record, error)
	Update(ctx context.Context, id string, in people.UpdateInput) (people.Record, error)
	UpdatePersonal(ctx context.Context, id string, in people.PersonalInput) (people.Record, error)
	Archive(ctx context.Context, id string) error
	List(ctx context.Context, q people.ListQuery) (people.Page, error)
}

type Handler struct {
	Records RecordService
	Log     *zap.Logger
}

func NewHandler(records RecordService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Records: records, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/user-details", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleArchive)
		})
	})
	r.Route("/personal-details/{id}", func(r chi.Router) {
		r.Put("/", h.handleUpdatePersonal)
		r.Delete("/", h.handleArchive)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in people.CreateInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	companyID, err := shared.CompanyID(r, in.CompanyID)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	in.CompanyID = companyID

	rec, err := h.Records.Create(r.Context(), in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	kind := people.Kind(r.URL.Query().Get("type"))
	v.Enum("type", string(kind), []string{string(people.KindStaff), string(people.KindClient)}, "type must be staff or client")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	q, err := shared.RecordQuery(r, kind)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	page, err := h.Records.List(r.Context(), q)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.SuccessWithMeta(w, page.Records, page.Meta, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Records.Get(r.Context(), chi.URLParam(r, "id"), shared.SkipCache(r))
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in people.UpdateInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}

	rec, err := h.Records.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdatePersonal(w http.ResponseWriter, r *http.Request) {
	var in people.PersonalInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}

	rec, err := h.Records.UpdatePersonal(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Records.Archive(r.Context(), id); err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, map[string]any{"id": id, "status": people.StatusArchived}, middleware.GetRequestID(r.Context()))
}
