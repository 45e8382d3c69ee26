package teams

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID string    `gorm:"type:uuid;not null;index" json:"companyId"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Member is the summary of a staff record assigned to a team.
type Member struct {
	TeamID   string `json:"-"`
	UserID   string `json:"id"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

type TeamView struct {
	Team
	Members []Member `json:"members"`
}

type CreateInput struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"members"`
}
