package teams

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"careroster/internal/domain/people"
)

var ErrInvalidMembers = errors.New("team members must be active staff of the company")

type StoreAPI interface {
	List(ctx context.Context, companyID string) ([]Team, error)
	Get(ctx context.Context, companyID, id string) (*Team, error)
	Members(ctx context.Context, teamIDs []string) ([]Member, error)
	Create(ctx context.Context, team *Team, memberIDs []string) error
	Delete(ctx context.Context, companyID, id string) ([]string, error)
}

type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context, companyID string) ([]Team, error) {
	var teams []Team
	err := s.DB.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (s *Store) Get(ctx context.Context, companyID, id string) (*Team, error) {
	var team Team
	err := s.DB.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, people.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Members returns the active members of the given teams ordered by full name.
func (s *Store) Members(ctx context.Context, teamIDs []string) ([]Member, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	var members []Member
	err := s.DB.WithContext(ctx).
		Table("users").
		Select("work_details.team_id AS team_id, users.id AS user_id, personal_details.full_name AS full_name, work_details.role AS role, personal_details.email AS email").
		Joins("JOIN work_details ON work_details.id = users.work_details_id").
		Joins("LEFT JOIN personal_details ON personal_details.id = users.personal_details_id").
		Where("work_details.team_id IN ? AND users.archived = ?", teamIDs, false).
		Order("personal_details.full_name ASC").
		Scan(&members).Error
	return members, err
}

// Create inserts the team and assigns its members in one transaction. Every
// member must be a non-archived staff record of the same company.
func (s *Store) Create(ctx context.Context, team *Team, memberIDs []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}

		members := tx.Model(&people.User{}).
			Where("id IN ? AND company_id = ? AND archived = ? AND role <> ? AND work_details_id IS NOT NULL",
				memberIDs, team.CompanyID, false, people.RoleClient)

		var count int64
		if err := members.Session(&gorm.Session{}).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(memberIDs)) {
			return fmt.Errorf("%w: %d of %d found", ErrInvalidMembers, count, len(memberIDs))
		}

		return tx.Model(&people.WorkDetails{}).
			Where("id IN (?)", members.Session(&gorm.Session{}).Select("work_details_id")).
			Update("team_id", team.ID).Error
	})
}

// Delete clears member assignments and removes the team. It returns the ids
// of the records that were members.
func (s *Store) Delete(ctx context.Context, companyID, id string) ([]string, error) {
	var memberIDs []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&people.User{}).
			Joins("JOIN work_details ON work_details.id = users.work_details_id").
			Where("work_details.team_id = ?", id).
			Pluck("users.id", &memberIDs).Error; err != nil {
			return err
		}

		if err := tx.Model(&people.WorkDetails{}).
			Where("team_id = ?", id).
			Update("team_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("company_id = ? AND id = ?", companyID, id).Delete(&Team{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return people.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return memberIDs, nil
}
