package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"careroster/internal/domain/people"
)

// Empty is written in place of a missing category or expiry date.
const Empty = "Empty"

const (
	StatusNotExpired = "Not Expired"
	StatusExpired    = "Expired"
)

type Document struct {
	ID              string      `gorm:"type:uuid;primaryKey"`
	UserID          string      `gorm:"type:uuid;not null;index"`
	OwnerKind       people.Kind `gorm:"type:varchar(16);not null"`
	FileName        string      `gorm:"not null"`
	URL             string      `gorm:"not null"`
	Category        *string
	Expires         *time.Time `gorm:"type:date"`
	StaffVisibility bool       `gorm:"not null;default:false"`
	NoExpiration    bool       `gorm:"not null;default:false"`
	CreatedAt       time.Time  `gorm:"index"`
	UpdatedAt       time.Time
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// StatusAt derives the expiry status of d at now.
func StatusAt(d Document, now time.Time) string {
	if d.NoExpiration {
		return StatusNotExpired
	}
	if d.Expires != nil && d.Expires.After(now) {
		return StatusNotExpired
	}
	return StatusExpired
}

// View is the API form of a document.
type View struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	FileName        string    `json:"fileName"`
	URL             string    `json:"url"`
	Category        string    `json:"category"`
	Expires         string    `json:"expires"`
	StaffVisibility bool      `json:"staffVisibility"`
	NoExpiration    bool      `json:"noExpiration"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toView(d Document, now time.Time) View {
	v := View{
		ID:              d.ID,
		UserID:          d.UserID,
		FileName:        d.FileName,
		URL:             d.URL,
		Category:        Empty,
		Expires:         Empty,
		StaffVisibility: d.StaffVisibility,
		NoExpiration:    d.NoExpiration,
		Status:          StatusAt(d, now),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Category != nil && *d.Category != "" {
		v.Category = *d.Category
	}
	if d.Expires != nil {
		v.Expires = d.Expires.Format("2006-01-02")
	}
	return v
}
