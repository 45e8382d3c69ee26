package people

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	KindStaff  Kind = "staff"
	KindClient Kind = "client"
)

func (k Kind) Valid() bool {
	return k == KindStaff || k == KindClient
}

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

func statusOf(archived bool) Status {
	if archived {
		return StatusArchived
	}
	return StatusActive
}

// Profile holds the fields shared by staff and client records.
type Profile struct {
	ID              string          `json:"id"`
	Role            string          `json:"role"`
	SubRoles        string          `json:"subRoles"`
	CompanyID       string          `json:"companyId"`
	Status          Status          `json:"status"`
	SubscriptionEnd *time.Time      `json:"subscriptionEnd,omitempty"`
	PersonalDetails PersonalDetails `json:"personalDetails"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type Staff struct {
	Profile
	WorkDetails       WorkDetails        `json:"workDetails"`
	PublicInformation *PublicInformation `json:"publicInformation,omitempty"`
}

type Client struct {
	Profile
	PublicInformation *PublicInformation `json:"publicInformation,omitempty"`
}

// Record is either a staff member or a client; exactly one of Staff and
// Client is set and Kind names which.
type Record struct {
	Kind   Kind
	Staff  *Staff
	Client *Client
}

func StaffRecord(s *Staff) Record   { return Record{Kind: KindStaff, Staff: s} }
func ClientRecord(c *Client) Record { return Record{Kind: KindClient, Client: c} }

func (r Record) Found() bool {
	return r.Kind.Valid()
}

func (r Record) ID() string {
	switch r.Kind {
	case KindStaff:
		return r.Staff.ID
	case KindClient:
		return r.Client.ID
	}
	return ""
}

func (r Record) Profile() Profile {
	switch r.Kind {
	case KindStaff:
		return r.Staff.Profile
	case KindClient:
		return r.Client.Profile
	}
	return Profile{}
}

// body is the snapshot stored in cache under the kind-specific key.
func (r Record) body() any {
	switch r.Kind {
	case KindStaff:
		return r.Staff
	case KindClient:
		return r.Client
	}
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	if !r.Found() {
		return []byte(`{"type":null,"record":null}`), nil
	}
	return json.Marshal(struct {
		Type   Kind `json:"type"`
		Record any  `json:"record"`
	}{Type: r.Kind, Record: r.body()})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   *Kind           `json:"type"`
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type == nil {
		*r = Record{}
		return nil
	}
	decoded, err := decodeRecord(*raw.Type, raw.Record)
	if errors.Is(err, ErrNotFound) {
		*r = Record{}
		return nil
	}
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// decodeRecord reports ErrNotFound for a null or id-less body so a poisoned
// cache entry never passes for a record.
func decodeRecord(kind Kind, data []byte) (Record, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Record{}, ErrNotFound
	}
	var rec Record
	switch kind {
	case KindStaff:
		var s Staff
		if err := json.Unmarshal(data, &s); err != nil {
			return Record{}, err
		}
		rec = StaffRecord(&s)
	case KindClient:
		var c Client
		if err := json.Unmarshal(data, &c); err != nil {
			return Record{}, err
		}
		rec = ClientRecord(&c)
	default:
		return Record{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if rec.ID() == "" {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// KindOfRole classifies a stored role value.
func KindOfRole(role string) Kind {
	if role == RoleClient {
		return KindClient
	}
	return KindStaff
}

// recordFromUser converts a loaded row into the matching variant. Staff rows
// without work details do not form a valid record.
func recordFromUser(u *User) (Record, error) {
	if u == nil {
		return Record{}, ErrNotFound
	}
	profile := Profile{
		ID:              u.ID,
		Role:            u.Role,
		SubRoles:        u.SubRoles,
		CompanyID:       u.CompanyID,
		Status:          statusOf(u.Archived),
		SubscriptionEnd: u.SubscriptionEnd,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.PersonalDetails != nil {
		profile.PersonalDetails = *u.PersonalDetails
	}

	if KindOfRole(u.Role) == KindClient {
		return ClientRecord(&Client{Profile: profile, PublicInformation: u.PublicInformation}), nil
	}
	if u.WorkDetails == nil {
		return Record{}, fmt.Errorf("%w: staff record %s has no work details", ErrNotFound, u.ID)
	}
	return StaffRecord(&Staff{Profile: profile, WorkDetails: *u.WorkDetails, PublicInformation: u.PublicInformation}), nil
}
