package people

import "context"

type StoreAPI interface {
	FindStaff(ctx context.Context, id string) (*User, error)
	FindClient(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	CreatePersonalDetails(ctx context.Context, pd *PersonalDetails) error
	UpdateRecord(ctx context.Context, id string, changes RecordChanges) error
	Archive(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]User, int64, error)
	FindPublicInformation(ctx context.Context, userID string) (*PublicInformation, error)
	SavePublicInformation(ctx context.Context, info *PublicInformation) error
}

// RecordChanges describes one transactional update of a record. Nil sections
// are left untouched.
type RecordChanges struct {
	SubRoles          *string
	Personal          *PersonalDetails
	Work              *WorkDetails
	PublicInformation *PublicInformation
}

func (c RecordChanges) Empty() bool {
	return c.SubRoles == nil && c.Personal == nil && c.Work == nil && c.PublicInformation == nil
}

type ListQuery struct {
	CompanyID      string
	Kind           Kind
	Page           int
	Limit          int
	Gender         string
	Role           string
	EmploymentType string
	TeamID         string
	UserRole       string
}

func (q ListQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
