package signuphandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"careroster/internal/domain/accounts"
	"careroster/internal/transport/http/api"
	"careroster/internal/transport/http/middleware"
	"careroster/internal/transport/http/shared"
)

type AccountService interface {
	SignUp(ctx context.Context, in accounts.SignUpInput) (*accounts.Account, error)
}

type Handler struct {
	Accounts AccountService
	Log      *zap.Logger
}

func NewHandler(svc AccountService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Accounts: svc, Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sign-up", h.HandleSignUp)
}

// HandleSignUp runs after the identity provider has created the user; the
// body carries that user's external id.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var in accounts.SignUpInput
	if !shared.DecodeJSON(w, r, &in) {
		return
	}

	account, err := h.Accounts.SignUp(r.Context(), in)
	if err != nil {
		shared.WriteError(w, r, h.Log, err)
		return
	}
	h.Log.Info("account created",
		zap.String("company_id", account.Company.ID),
		zap.String("user_id", account.Admin.ID()),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
	)
	api.Created(w, account, middleware.GetRequestID(r.Context()))
}
