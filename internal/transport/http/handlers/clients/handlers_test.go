package clientshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careroster/internal/domain/people"
)

type fakeInfo struct {
	rows    map[string]*people.PublicInformation
	clients map[string]bool
}

func (f *fakeInfo) GetPublicInformation(_ context.Context, userID string) (*people.PublicInformation, error) {
	if !f.clients[userID] {
		return nil, people.ErrNotFound
	}
	row, ok := f.rows[userID]
	if !ok {
		return nil, people.ErrNotFound
	}
	return row, nil
}

func (f *fakeInfo) SavePublicInformation(_ context.Context, userID string, in people.PublicInfoInput) (*people.PublicInformation, error) {
	if !f.clients[userID] {
		return nil, people.NewValidationError(people.MsgPublicInfoNotStaff, "userId")
	}
	row := &people.PublicInformation{ID: "pi-" + userID, StaffID: userID, GeneralInfo: in.GeneralInfo, NeedToKnowInfo: in.NeedToKnowInfo}
	f.rows[userID] = row
	return row, nil
}

func newRouter(info *fakeInfo) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/user", NewHandler(info, nil).RegisterRoutes)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPublicInformationRequiresUserID(t *testing.T) {
	h := newRouter(&fakeInfo{rows: map[string]*people.PublicInformation{}, clients: map[string]bool{}})

	rec := serve(h, http.MethodGet, "/api/user/client/public-information", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"userId"`)
}

func TestPublicInformationSaveThenGet(t *testing.T) {
	info := &fakeInfo{rows: map[string]*people.PublicInformation{}, clients: map[string]bool{"c1": true}}
	h := newRouter(info)

	rec := serve(h, http.MethodPost, "/api/user/client/public-information?userId=c1",
		`{"generalInfo":"Prefers mornings","needToKnowInfo":[{"heading":"Allergy","description":"Penicillin"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(h, http.MethodPut, "/api/user/client/public-information?userId=c1", `{"generalInfo":"Prefers evenings"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/api/user/client/public-information?userId=c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data people.PublicInformation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Prefers evenings", env.Data.GeneralInfo)
	assert.Equal(t, "c1", env.Data.StaffID)
}

func TestPublicInformationRejectsStaff(t *testing.T) {
	h := newRouter(&fakeInfo{rows: map[string]*people.PublicInformation{}, clients: map[string]bool{}})

	rec := serve(h, http.MethodPut, "/api/user/client/public-information?userId=s1", `{"generalInfo":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodGet, "/api/user/client/public-information?userId=s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
