package usershandler

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

	"careroster/internal/domain/auth"
	"careroster/internal/domain/people"
	"careroster/internal/transport/http/middleware"
)

type fakeRecords struct {
	records   map[string]people.Record
	created   people.CreateInput
	listQuery people.ListQuery
	skipCache bool
	archived  []string
	createErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: map[string]people.Record{}}
}

func (f *fakeRecords) add(rec people.Record) {
	f.records[rec.ID()] = rec
}

func (f *fakeRecords) Create(_ context.Context, in people.CreateInput) (people.Record, error) {
	f.created = in
	if f.createErr != nil {
		return people.Record{}, f.createErr
	}
	rec := clientRecord("new-id", in.PersonalDetails.FullName)
	f.add(rec)
	return rec, nil
}

func (f *fakeRecords) Get(_ context.Context, id string, skipCache bool) (people.Record, error) {
	f.skipCache = skipCache
	rec, ok := f.records[id]
	if !ok {
		return people.Record{}, people.ErrNotFound
	}
	return rec, nil
}

func (f *fakeRecords) Update(_ context.Context, id string, in people.UpdateInput) (people.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return people.Record{}, people.ErrNotFound
	}
	if in.WorkDetails != nil && rec.Kind == people.KindClient {
		return people.Record{}, people.NewValidationError(people.MsgWorkNotApplicable, "workDetails")
	}
	return rec, nil
}

func (f *fakeRecords) UpdatePersonal(_ context.Context, id string, in people.PersonalInput) (people.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return people.Record{}, people.ErrNotFound
	}
	if in.Email == "taken@example.com" {
		return people.Record{}, people.ErrConflict
	}
	rec.Client.PersonalDetails.FullName = in.FullName
	return rec, nil
}

func (f *fakeRecords) Archive(_ context.Context, id string) error {
	if _, ok := f.records[id]; !ok {
		return people.ErrNotFound
	}
	delete(f.records, id)
	f.archived = append(f.archived, id)
	return nil
}

func (f *fakeRecords) List(_ context.Context, q people.ListQuery) (people.Page, error) {
	f.listQuery = q
	if q.CompanyID == "" {
		return people.Page{}, people.NewValidationError(people.MsgMissingFields, "companyId")
	}
	records := make([]people.Record, 0, len(f.records))
	for _, rec := range f.records {
		records = append(records, rec)
	}
	return people.Page{Records: records, Meta: people.NewPageMeta(int64(len(records)), q.Page, q.Limit)}, nil
}

func clientRecord(id, name string) people.Record {
	return people.ClientRecord(&people.Client{Profile: people.Profile{
		ID:              id,
		Role:            people.RoleClient,
		CompanyID:       "company-1",
		Status:          people.StatusActive,
		PersonalDetails: people.PersonalDetails{FullName: name},
	}})
}

func newRouter(records RecordService) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "admin", CompanyID: "company-1", Role: people.RoleAdmin})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/user", NewHandler(records, nil).RegisterRoutes)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestCreateDefaultsCompanyFromCaller(t *testing.T) {
	records := newFakeRecords()
	h := newRouter(records)

	rec, env := do(t, h, http.MethodPost, "/api/user/user-details", `{"role":"client","personalDetails":{"fullName":"Ada"}}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "company-1", records.created.CompanyID)
	assert.JSONEq(t, `"client"`, string(mustField(t, env.Data, "type")))
}

func TestOtherCompanyIsForbidden(t *testing.T) {
	records := newFakeRecords()
	records.add(clientRecord("c1", "Ada"))
	h := newRouter(records)

	rec, env := do(t, h, http.MethodGet, "/api/user/user-details?type=client&companyId=company-2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", env.Error.Code)
	assert.Empty(t, records.listQuery.CompanyID)

	rec, env = do(t, h, http.MethodPost, "/api/user/user-details", `{"role":"client","companyId":"company-2","personalDetails":{"fullName":"Ada"}}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", env.Error.Code)
	assert.Empty(t, records.created.CompanyID)

	rec, _ = do(t, h, http.MethodGet, "/api/user/user-details?type=client&companyId=company-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateConflict(t *testing.T) {
	records := newFakeRecords()
	records.createErr = people.ErrConflict
	h := newRouter(records)

	rec, env := do(t, h, http.MethodPost, "/api/user/user-details", `{"personalDetails":{"fullName":"Ada"}}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", env.Error.Code)
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	h := newRouter(newFakeRecords())

	rec, env := do(t, h, http.MethodPost, "/api/user/user-details", `{"role":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", env.Error.Code)
}

func TestGetPassesSkipCache(t *testing.T) {
	records := newFakeRecords()
	records.add(clientRecord("c1", "Ada"))
	h := newRouter(records)

	rec, _ := do(t, h, http.MethodGet, "/api/user/user-details/c1?skipCache=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, records.skipCache)

	rec, env := do(t, h, http.MethodGet, "/api/user/user-details/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestListReturnsMetaAndFilters(t *testing.T) {
	records := newFakeRecords()
	records.add(clientRecord("c1", "Ada"))
	h := newRouter(records)

	rec, env := do(t, h, http.MethodGet, "/api/user/user-details?type=client&gender=Female&page=2&limit=5", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, people.KindClient, records.listQuery.Kind)
	assert.Equal(t, "Female", records.listQuery.Gender)
	assert.Equal(t, "company-1", records.listQuery.CompanyID)
	assert.JSONEq(t, `{"total":1,"page":2,"limit":5,"totalPages":1}`, string(env.Meta))
}

func TestListRejectsLimitAboveMaximum(t *testing.T) {
	records := newFakeRecords()
	h := newRouter(records)

	rec, env := do(t, h, http.MethodGet, "/api/user/user-details?type=client&limit=250", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Zero(t, records.listQuery.Limit)
}

func TestListRejectsUnknownType(t *testing.T) {
	h := newRouter(newFakeRecords())

	rec, env := do(t, h, http.MethodGet, "/api/user/user-details?type=robot", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestUpdateWorkDetailsOnClientIsValidationError(t *testing.T) {
	records := newFakeRecords()
	records.add(clientRecord("c1", "Ada"))
	h := newRouter(records)

	rec, env := do(t, h, http.MethodPut, "/api/user/user-details/c1", `{"workDetails":{"worksAt":"North"}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestPersonalDetailsRoutes(t *testing.T) {
	records := newFakeRecords()
	records.add(clientRecord("c1", "Ada"))
	h := newRouter(records)

	rec, _ := do(t, h, http.MethodPut, "/api/user/personal-details/c1", `{"fullName":"Ada L","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPut, "/api/user/personal-details/c1", `{"fullName":"Ada L","email":"taken@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env := do(t, h, http.MethodDelete, "/api/user/personal-details/c1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"c1","status":"archived"}`, string(env.Data))
	assert.Equal(t, []string{"c1"}, records.archived)
}

func TestArchiveMissingRecord(t *testing.T) {
	h := newRouter(newFakeRecords())

	rec, _ := do(t, h, http.MethodDelete, "/api/user/user-details/nope", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func mustField(t *testing.T, raw json.RawMessage, field string) json.RawMessage {
	t.Helper()
	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &obj))
	return obj[field]
}
