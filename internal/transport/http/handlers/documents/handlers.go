package documentshandler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"careroster/internal/domain/documents"
	"careroster/internal/domain/people"
	"careroster/internal/transport/http/api"
	"careroster/internal/transport/http/middleware"
	"careroster/internal/transport/http/shared"
)

const multipartMemory = 8 << 20

type DocumentService interface {
	List(ctx context.Context, kind people.Kind, userID string) ([]documents.View, error)
	Create(ctx context.Context, kind people.Kind, in documents.Input, file *documents.File) (*documents.View, error)
	Update(ctx context.Context, kind people.Kind, id string, in documents.Input, file *documents.File) (*documents.View, error)
}

type Handler struct {
	Documents DocumentService
	Log       *zap.Logger
}

func NewHandler(svc DocumentService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Documents: svc, Log: log}
}

// RegisterRoutes mounts the staff document routes at /document and the client
// ones at /client/document.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/document", h.routes(people.KindStaff))
	r.Route("/client/document", h.routes(people.KindClient))
}

func (h *Handler) routes(kind people.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.handleList(kind))
		r.Post("/", h.handleCreate(kind))
		r.Put("/", h.handleUpdate(kind))
	}
}

func (h *Handler) handleList(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("userId"))
		v := shared.NewValidator()
		v.Required("userId", userID, "userId is required")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}

		views, err := h.Documents.List(r.Context(), kind, userID)
		if err != nil {
			shared.WriteError(w, r, h.Log, err)
			return
		}
		api.Success(w, views, middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) handleCreate(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, file, ok := h.readInput(w, r)
		if !ok {
			return
		}
		if file != nil {
			defer file.close()
		}

		view, err := h.Documents.Create(r.Context(), kind, in, file.document())
		if err != nil {
			shared.WriteError(w, r, h.Log, err)
			return
		}
		api.Created(w, view, middleware.GetRequestID(r.Context()))
	}
}

// handleUpdate takes the document id from the id query parameter.
func (h *Handler) handleUpdate(kind people.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		v := shared.NewValidator()
		v.Required("id", id, "id is required")
		if v.Reject(w, middleware.GetRequestID(r.Context())) {
			return
		}
		in, file, ok := h.readInput(w, r)
		if !ok {
			return
		}
		if file != nil {
			defer file.close()
		}

		view, err := h.Documents.Update(r.Context(), kind, id, in, file.document())
		if err != nil {
			shared.WriteError(w, r, h.Log, err)
			return
		}
		api.Success(w, view, middleware.GetRequestID(r.Context()))
	}
}

type upload struct {
	file   multipart.File
	header *multipart.FileHeader
}

func (u *upload) document() *documents.File {
	if u == nil {
		return nil
	}
	return &documents.File{
		Name:        u.header.Filename,
		ContentType: u.header.Header.Get("Content-Type"),
		Body:        u.file,
	}
}

func (u *upload) close() {
	_ = u.file.Close()
}

// readInput accepts a JSON body or a multipart form with an optional "file"
// part.
func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (documents.Input, *upload, bool) {
	var in documents.Input
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return in, nil, shared.DecodeJSON(w, r, &in)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			shared.WriteError(w, r, h.Log, err)
			return in, nil, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_form", "invalid multipart form", middleware.GetRequestID(r.Context()))
		return in, nil, false
	}
	in = documents.Input{
		UserID:          r.FormValue("userId"),
		FileName:        r.FormValue("fileName"),
		URL:             r.FormValue("url"),
		Category:        r.FormValue("category"),
		Expires:         r.FormValue("expires"),
		StaffVisibility: formBool(r, "staffVisibility"),
		NoExpiration:    formBool(r, "noExpiration"),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, true
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_form", "invalid file part", middleware.GetRequestID(r.Context()))
		return in, nil, false
	}
	return in, &upload{file: file, header: header}, true
}

func formBool(r *http.Request, key string) *bool {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
