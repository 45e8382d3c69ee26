package reports

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"careroster/internal/domain/people"
)

func staffRecord(n int) people.Record {
	return people.StaffRecord(&people.Staff{
		Profile: people.Profile{
			ID: fmt.Sprintf("s-%d", n),
			PersonalDetails: people.PersonalDetails{
				FullName:    fmt.Sprintf("Carer %03d", n),
				Email:       fmt.Sprintf("carer%03d@example.com", n),
				PhoneNumber: "0400 000 000",
			},
		},
		WorkDetails: people.WorkDetails{
			WorksAt:        "North",
			HiredOn:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			Role:           people.RoleCarer,
			EmploymentType: people.EmploymentCasual,
		},
	})
}

type pagedLister struct {
	records []people.Record
	queries []people.ListQuery
}

func (p *pagedLister) List(_ context.Context, q people.ListQuery) (people.Page, error) {
	p.queries = append(p.queries, q)
	start := (q.Page - 1) * q.Limit
	end := start + q.Limit
	if start > len(p.records) {
		start = len(p.records)
	}
	if end > len(p.records) {
		end = len(p.records)
	}
	return people.Page{
		Records: p.records[start:end],
		Meta:    people.NewPageMeta(int64(len(p.records)), q.Page, q.Limit),
	}, nil
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRowsFromRecordsSkipsClients(t *testing.T) {
	client := people.ClientRecord(&people.Client{Profile: people.Profile{ID: "c-1"}})

	rows := RowsFromRecords([]people.Record{staffRecord(1), client})

	require.Len(t, rows, 1)
	assert.Equal(t, "Carer 001", rows[0].Name)
	assert.Equal(t, "2024-07-01", rows[0].HiredOn)
}

func TestRosterXLSX(t *testing.T) {
	data, err := RosterXLSX(RowsFromRecords([]people.Record{staffRecord(1), staffRecord(2)}))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rosterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, rosterHeaders, rows[0])
	assert.Equal(t, "Carer 002", rows[2][0])
	assert.Equal(t, people.EmploymentCasual, rows[2][4])
}

func TestRosterPDF(t *testing.T) {
	data, err := RosterPDF("Staff roster", RowsFromRecords([]people.Record{staffRecord(1)}), time.Now())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestStaffRosterWalksAllPages(t *testing.T) {
	lister := &pagedLister{}
	for i := 1; i <= 230; i++ {
		lister.records = append(lister.records, staffRecord(i))
	}
	svc := NewService(lister)
	svc.Now = func() time.Time { return time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC) }

	export, err := svc.StaffRoster(context.Background(), people.ListQuery{CompanyID: "c", Page: 7, Limit: 5, Gender: "Female"}, FormatXLSX)

	require.NoError(t, err)
	require.Len(t, lister.queries, 3)
	for _, q := range lister.queries {
		assert.Equal(t, people.KindStaff, q.Kind)
		assert.Equal(t, people.MaxLimit, q.Limit)
		assert.Equal(t, "Female", q.Gender)
	}
	assert.Equal(t, "staff-roster-20260402.xlsx", export.FileName)
	assert.Equal(t, FormatXLSX.ContentType(), export.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(rosterSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 231)
}

func TestStaffRosterEmpty(t *testing.T) {
	svc := NewService(&pagedLister{})

	export, err := svc.StaffRoster(context.Background(), people.ListQuery{CompanyID: "c"}, FormatPDF)

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", export.ContentType)
	assert.NotEmpty(t, export.Data)
}
