package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"careroster/internal/domain/people"
	"careroster/internal/transport/http/middleware"
)

// ErrForeignCompany rejects a request naming a company other than the
// caller's own.
var ErrForeignCompany = errors.New("company outside the caller's session")

// CompanyID scopes a request to the company in the caller's session. A
// companyId query parameter, or the explicit value from a body, may repeat that
// company but never name another one.
func CompanyID(r *http.Request, explicit string) (string, error) {
	var own string
	if user, ok := middleware.GetUser(r.Context()); ok {
		own = user.CompanyID
	}
	for _, named := range []string{r.URL.Query().Get("companyId"), explicit} {
		if named = strings.TrimSpace(named); named != "" && named != own {
			return "", ErrForeignCompany
		}
	}
	return own, nil
}

func SkipCache(r *http.Request) bool {
	skip, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("skipCache")))
	return skip
}

// RecordQuery reads paging and the equality filters of the record list routes.
// "team" and "teamId" are accepted as aliases. A limit above people.MaxLimit is
// rejected rather than clamped so the page metadata echoes the requested size.
func RecordQuery(r *http.Request, kind people.Kind) (people.ListQuery, error) {
	companyID, err := CompanyID(r, "")
	if err != nil {
		return people.ListQuery{}, err
	}
	query := r.URL.Query()
	if limit, err := strconv.Atoi(strings.TrimSpace(query.Get("limit"))); err == nil && limit > people.MaxLimit {
		return people.ListQuery{}, people.NewValidationError(fmt.Sprintf("limit must be at most %d", people.MaxLimit), "limit")
	}
	page := ParsePagination(r, people.DefaultLimit, people.MaxLimit)
	teamID := strings.TrimSpace(query.Get("teamId"))
	if teamID == "" {
		teamID = strings.TrimSpace(query.Get("team"))
	}
	return people.ListQuery{
		CompanyID:      companyID,
		Kind:           kind,
		Page:           page.Page,
		Limit:          page.Limit,
		Gender:         strings.TrimSpace(query.Get("gender")),
		Role:           strings.TrimSpace(query.Get("role")),
		EmploymentType: strings.TrimSpace(query.Get("employmentType")),
		TeamID:         teamID,
		UserRole:       strings.TrimSpace(query.Get("userRole")),
	}, nil
}
