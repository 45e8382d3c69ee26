package staffhandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"careroster/internal/domain/people"
	"careroster/internal/domain/reports"
	"careroster/internal/transport/http/api"
	"careroster/internal/transport/http/middleware"
	"careroster/internal/transport/http/shared"
)

type StaffService interface {
	Create(ctx context.Context, in people.CreateInput) (people.Record, error)
	GetStaff(ctx context.Context, id string, skipCache bool) (*people.Staff, error)
	Update(ctx context.Context, id string, in people.UpdateInput) (people.Record, error)
	UpdatePersonal(ctx context.Context, id string, in people.PersonalInput) (people.Record, error)
	UpdateWork(ctx context.Context, id string, in people.WorkInput) (people.Record, error)
	Archive(ctx context.Context, id string) error
	List(ctx context.Context, q people.ListQuery) (people.Page, error)
	ListPersonal(ctx context.Context, q people.ListQuery) ([]people.StaffPersonal, people.PageMeta, error)
	CreatePersonalDetails(ctx context.Context, in people.PersonalInput) (*people.PersonalDetails, error)
}

type RosterExporter interface {
	StaffRoster(ctx context.Context, q people.ListQuery, format reports.Format) (*reports.Export, error)
}

type Handler struct {
	Staff   StaffService
	Reports RosterExporter
	Log     *zap.Logger
}

func NewHandler(staff StaffService, roster RosterExporter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Staff: staff, Reports: roster, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.Route("/personal-details", func(r chi.Router) {
			r.Post("/", h.handleCreatePersonal)
			r.Get("/", h.handleListPersonal)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetPersonal)
				r.Put("/", h.handleUpdatePersonal)
				r.Delete("/", h.handleArchive)
			})
		})
		r.Route("/work-details/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetWork)
			r.Put("/", h.handleUpdateWork)
		})
		r.Route("/staff-details", func(r chi.Router) {
			r.Post("/", h.handleCreate)
			r.Get("/", h.handleList)
			r.Get("/export", h.handleExport)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGet)
				r.Put("/", h.handleUpdate)
			})
		})
	})
}

func (h *Handler) handleCreatePersonal(w http.ResponseWriter, r *http.Request) {
	var in people.PersonalInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}

	pd, err := h.Staff.CreatePersonalDetails(r.Context(), in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Created(w, pd, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPersonal(w http.ResponseWriter, r *http.Request) {
	q, err := shared.RecordQuery(r, people.KindStaff)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	rows, meta, err := h.Staff.ListPersonal(r.Context(), q)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.SuccessWithMeta(w, rows, meta, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPersonal(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Staff.GetStaff(r.Context(), chi.URLParam(r, "id"), shared.SkipCache(r))
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, people.StaffPersonal{UserID: staff.ID, PersonalDetails: staff.PersonalDetails}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdatePersonal(w http.ResponseWriter, r *http.Request) {
	var in people.PersonalInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.Staff.GetStaff(r.Context(), id, false); err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}

	rec, err := h.Staff.UpdatePersonal(r.Context(), id, in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Staff.GetStaff(r.Context(), id, false); err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	if err := h.Staff.Archive(r.Context(), id); err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, map[string]any{"id": id, "status": people.StatusArchived}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetWork(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Staff.GetStaff(r.Context(), chi.URLParam(r, "id"), shared.SkipCache(r))
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, staff.WorkDetails, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateWork(w http.ResponseWriter, r *http.Request) {
	var in people.WorkInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}

	rec, err := h.Staff.UpdateWork(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in people.CreateInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	if in.Kind() != people.KindStaff {
		shared.WriteError(w, r, h.Log, people.NewValidationError(people.MsgInvalidRole, "role"))
		return
	}
	companyID, err := shared.CompanyID(r, in.CompanyID)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	in.CompanyID = companyID

	rec, err := h.Staff.Create(r.Context(), in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Created(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := shared.RecordQuery(r, people.KindStaff)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	page, err := h.Staff.List(r.Context(), q)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.SuccessWithMeta(w, page.Records, page.Meta, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Staff.GetStaff(r.Context(), chi.URLParam(r, "id"), shared.SkipCache(r))
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, people.StaffRecord(staff), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in people.UpdateInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.Staff.GetStaff(r.Context(), id, false); err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}

	rec, err := h.Staff.Update(r.Context(), id, in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	api.Success(w, rec, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.Reports == nil {
		api.Fail(w, http.StatusNotImplemented, "export_unavailable", "roster export is not configured", requestID)
		return
	}
	format, err := reports.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		v := shared.NewValidator()
		v.Add("format", "format must be pdf or xlsx")
		v.Reject(w, requestID)
		return
	}

	q, err := shared.RecordQuery(r, people.KindStaff)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	export, err := h.Reports.StaffRoster(r.Context(), q, format)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		h.Log.Warn("roster export write failed", zap.String("request_id", requestID), zap.Error(err))
	}
}
