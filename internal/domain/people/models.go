package people

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const RoleClient = "client"

// Staff roles accepted in work details.
const (
	RoleCarer         = "Carer"
	RoleAdmin         = "Admin"
	RoleCoordinator   = "Coordinator"
	RoleHR            = "HR"
	RoleOfficeSupport = "OfficeSupport"
	RoleOps           = "Ops"
	RoleKiosk         = "Kiosk"
	RoleOthers        = "Others"
)

const (
	EmploymentFullTime   = "FullTime"
	EmploymentPartTime   = "PartTime"
	EmploymentCasual     = "Casual"
	EmploymentContractor = "Contractor"
	EmploymentOthers     = "Others"
)

var StaffRoles = []string{RoleCarer, RoleAdmin, RoleCoordinator, RoleHR, RoleOfficeSupport, RoleOps, RoleKiosk, RoleOthers}

var EmploymentTypes = []string{EmploymentFullTime, EmploymentPartTime, EmploymentCasual, EmploymentContractor, EmploymentOthers}

type Company struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// User is the single table behind both staff and client records.
type User struct {
	ID                string             `gorm:"type:uuid;primaryKey" json:"id"`
	Role              string             `gorm:"not null;index" json:"role"`
	SubRoles          string             `json:"subRoles"`
	CompanyID         string             `gorm:"type:uuid;not null;index" json:"companyId"`
	Archived          bool               `gorm:"not null;default:false;index" json:"archived"`
	SubscriptionEnd   *time.Time         `json:"subscriptionEnd,omitempty"`
	PersonalDetailsID *string            `gorm:"type:uuid;uniqueIndex" json:"personalDetailsId,omitempty"`
	PersonalDetails   *PersonalDetails   `gorm:"foreignKey:PersonalDetailsID" json:"personalDetails,omitempty"`
	WorkDetailsID     *string            `gorm:"type:uuid;uniqueIndex" json:"workDetailsId,omitempty"`
	WorkDetails       *WorkDetails       `gorm:"foreignKey:WorkDetailsID" json:"workDetails,omitempty"`
	PublicInformation *PublicInformation `gorm:"foreignKey:StaffID" json:"publicInformation,omitempty"`
	CreatedAt         time.Time          `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type PersonalDetails struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	FullName         string    `gorm:"not null" json:"fullName"`
	Email            string    `gorm:"not null;uniqueIndex" json:"email"`
	PhoneNumber      string    `gorm:"not null" json:"phoneNumber"`
	Address          string    `gorm:"not null" json:"address"`
	DOB              time.Time `gorm:"column:dob;type:date;not null" json:"dob"`
	EmergencyContact string    `gorm:"not null" json:"emergencyContact"`
	Language         *string   `json:"language,omitempty"`
	Nationality      *string   `json:"nationality,omitempty"`
	Religion         *string   `json:"religion,omitempty"`
	Gender           *string   `gorm:"index" json:"gender,omitempty"`
	Unit             *string   `json:"unit,omitempty"`
	MaritalStatus    *string   `json:"maritalStatus,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (p *PersonalDetails) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type WorkDetails struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	WorksAt        string    `gorm:"not null" json:"worksAt"`
	HiredOn        time.Time `gorm:"type:date;not null" json:"hiredOn"`
	Role           string    `gorm:"not null;index" json:"role"`
	EmploymentType string    `gorm:"not null;index" json:"employmentType"`
	TeamID         *string   `gorm:"type:uuid;index" json:"teamId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (w *WorkDetails) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

type InfoEntry struct {
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

// PublicInformation belongs to a client record. The owning column is named
// staff_id for compatibility with existing data.
type PublicInformation struct {
	ID             string                         `gorm:"type:uuid;primaryKey" json:"id"`
	StaffID        string                         `gorm:"type:uuid;not null;uniqueIndex" json:"staffId"`
	GeneralInfo    string                         `gorm:"type:text" json:"generalInfo"`
	NeedToKnowInfo datatypes.JSONSlice[InfoEntry] `gorm:"type:jsonb" json:"needToKnowInfo"`
	UsefulInfo     datatypes.JSONSlice[InfoEntry] `gorm:"type:jsonb" json:"usefulInfo"`
	CreatedAt      time.Time                      `json:"createdAt"`
	UpdatedAt      time.Time                      `json:"updatedAt"`
}

func (p *PublicInformation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (PublicInformation) TableName() string {
	return "public_information"
}

// AllModels lists every table owned by this package, in dependency order.
func AllModels() []any {
	return []any{&Company{}, &PersonalDetails{}, &WorkDetails{}, &User{}, &PublicInformation{}}
}
