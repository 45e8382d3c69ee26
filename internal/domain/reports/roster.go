package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"careroster/internal/domain/people"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Row is one staff member in a roster export.
type Row struct {
	Name           string
	Email          string
	Phone          string
	Role           string
	EmploymentType string
	WorksAt        string
	HiredOn        string
	Team           string
}

var rosterHeaders = []string{"Name", "Email", "Phone", "Role", "Employment", "Works At", "Hired On", "Team"}

func (r Row) cells() []string {
	return []string{r.Name, r.Email, r.Phone, r.Role, r.EmploymentType, r.WorksAt, r.HiredOn, r.Team}
}

// RowsFromRecords keeps staff records only.
func RowsFromRecords(records []people.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if rec.Kind != people.KindStaff {
			continue
		}
		s := rec.Staff
		row := Row{
			Name:           s.PersonalDetails.FullName,
			Email:          s.PersonalDetails.Email,
			Phone:          s.PersonalDetails.PhoneNumber,
			Role:           s.WorkDetails.Role,
			EmploymentType: s.WorkDetails.EmploymentType,
			WorksAt:        s.WorkDetails.WorksAt,
			HiredOn:        s.WorkDetails.HiredOn.Format("2006-01-02"),
		}
		if s.WorkDetails.TeamID != nil {
			row.Team = *s.WorkDetails.TeamID
		}
		rows = append(rows, row)
	}
	return rows
}

type PageLister interface {
	List(ctx context.Context, q people.ListQuery) (people.Page, error)
}

type Export struct {
	Data        []byte
	ContentType string
	FileName    string
}

type Service struct {
	People PageLister
	Now    func() time.Time
}

func NewService(lister PageLister) *Service {
	return &Service{People: lister, Now: time.Now}
}

// StaffRoster renders every staff record matching q, ignoring q's paging.
func (s *Service) StaffRoster(ctx context.Context, q people.ListQuery, format Format) (*Export, error) {
	q.Kind = people.KindStaff
	q.Limit = people.MaxLimit

	var records []people.Record
	for page := 1; ; page++ {
		q.Page = page
		result, err := s.People.List(ctx, q)
		if err != nil {
			return nil, err
		}
		records = append(records, result.Records...)
		if page >= result.Meta.TotalPages {
			break
		}
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	rows := RowsFromRecords(records)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = RosterXLSX(rows)
	default:
		format = FormatPDF
		data, err = RosterPDF("Staff roster", rows, now)
	}
	if err != nil {
		return nil, err
	}
	return &Export{
		Data:        data,
		ContentType: format.ContentType(),
		FileName:    fmt.Sprintf("staff-roster-%s.%s", now.Format("20060102"), format),
	}, nil
}
