package people

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "22P02":
			// malformed uuid in a lookup
			return ErrNotFound
		}
	}
	return err
}

func (s *Store) withRelations(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("PersonalDetails").
		Preload("WorkDetails").
		Preload("PublicInformation")
}

func (s *Store) FindStaff(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.withRelations(ctx).
		Where("id = ? AND archived = ? AND role <> ? AND work_details_id IS NOT NULL", id, false, RoleClient).
		First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *Store) FindClient(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.DB.WithContext(ctx).
		Preload("PersonalDetails").
		Preload("PublicInformation").
		Where("id = ? AND archived = ? AND role = ?", id, false, RoleClient).
		First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Create inserts the record and any attached sub-entities in one transaction.
// A PersonalDetailsID without PersonalDetails links an existing row.
func (s *Store) Create(ctx context.Context, user *User) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.PersonalDetails != nil {
			if err := tx.Create(user.PersonalDetails).Error; err != nil {
				return err
			}
			user.PersonalDetailsID = &user.PersonalDetails.ID
		}
		if user.WorkDetails != nil {
			if err := tx.Create(user.WorkDetails).Error; err != nil {
				return err
			}
			user.WorkDetailsID = &user.WorkDetails.ID
		}
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		if user.PublicInformation != nil {
			user.PublicInformation.StaffID = user.ID
			if err := tx.Create(user.PublicInformation).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err)
}

func (s *Store) CreatePersonalDetails(ctx context.Context, pd *PersonalDetails) error {
	return translateError(s.DB.WithContext(ctx).Create(pd).Error)
}

func personalColumns(pd *PersonalDetails) map[string]any {
	return map[string]any{
		"full_name":         pd.FullName,
		"email":             pd.Email,
		"phone_number":      pd.PhoneNumber,
		"address":           pd.Address,
		"dob":               pd.DOB,
		"emergency_contact": pd.EmergencyContact,
		"language":          pd.Language,
		"nationality":       pd.Nationality,
		"religion":          pd.Religion,
		"gender":            pd.Gender,
		"unit":              pd.Unit,
		"marital_status":    pd.MaritalStatus,
	}
}

// workColumns leaves team_id alone unless the input names a team; the teams
// service owns the assignment.
func workColumns(wd *WorkDetails) map[string]any {
	cols := map[string]any{
		"works_at":        wd.WorksAt,
		"hired_on":        wd.HiredOn,
		"role":            wd.Role,
		"employment_type": wd.EmploymentType,
	}
	if wd.TeamID != nil {
		cols["team_id"] = *wd.TeamID
	}
	return cols
}

// UpdateRecord applies changes to a non-archived record and its sub-entities
// atomically.
func (s *Store) UpdateRecord(ctx context.Context, id string, changes RecordChanges) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND archived = ?", id, false).
			First(&user).Error; err != nil {
			return err
		}

		userColumns := map[string]any{"updated_at": time.Now()}
		if changes.SubRoles != nil {
			userColumns["sub_roles"] = *changes.SubRoles
		}

		if changes.Personal != nil {
			if user.PersonalDetailsID != nil {
				if err := tx.Model(&PersonalDetails{}).
					Where("id = ?", *user.PersonalDetailsID).
					Updates(personalColumns(changes.Personal)).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Create(changes.Personal).Error; err != nil {
					return err
				}
				userColumns["personal_details_id"] = changes.Personal.ID
			}
		}

		if changes.Work != nil {
			if user.Role != RoleClient {
				userColumns["role"] = changes.Work.Role
			}
			if user.WorkDetailsID != nil {
				if err := tx.Model(&WorkDetails{}).
					Where("id = ?", *user.WorkDetailsID).
					Updates(workColumns(changes.Work)).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Create(changes.Work).Error; err != nil {
					return err
				}
				userColumns["work_details_id"] = changes.Work.ID
			}
		}

		if changes.PublicInformation != nil {
			changes.PublicInformation.StaffID = id
			if err := upsertPublicInformation(tx, changes.PublicInformation); err != nil {
				return err
			}
		}

		return tx.Model(&User{}).Where("id = ?", id).Updates(userColumns).Error
	})
	return translateError(err)
}

func (s *Store) Archive(ctx context.Context, id string) error {
	result := s.DB.WithContext(ctx).Model(&User{}).
		Where("id = ? AND archived = ?", id, false).
		Updates(map[string]any{"archived": true, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]User, int64, error) {
	base := s.DB.WithContext(ctx).Model(&User{}).
		Where("users.company_id = ? AND users.archived = ?", q.CompanyID, false)

	switch q.Kind {
	case KindStaff:
		base = base.Where("users.role <> ? AND users.work_details_id IS NOT NULL", RoleClient)
	case KindClient:
		base = base.Where("users.role = ?", RoleClient)
	}

	switch q.UserRole {
	case "":
	case string(KindStaff):
		base = base.Where("users.role <> ?", RoleClient)
	default:
		base = base.Where("users.role = ?", q.UserRole)
	}

	if q.Gender != "" {
		base = base.Where("users.personal_details_id IN (?)",
			s.DB.Model(&PersonalDetails{}).Select("id").Where("gender = ?", q.Gender))
	}
	if q.Role != "" || q.EmploymentType != "" || q.TeamID != "" {
		work := s.DB.Model(&WorkDetails{}).Select("id")
		if q.Role != "" {
			work = work.Where("role = ?", q.Role)
		}
		if q.EmploymentType != "" {
			work = work.Where("employment_type = ?", q.EmploymentType)
		}
		if q.TeamID != "" {
			work = work.Where("team_id::text = ?", q.TeamID)
		}
		base = base.Where("users.work_details_id IN (?)", work)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}
	if total == 0 {
		return []User{}, 0, nil
	}

	var users []User
	err := base.
		Preload("PersonalDetails").
		Preload("WorkDetails").
		Preload("PublicInformation").
		Order("users.created_at DESC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return users, total, nil
}

func (s *Store) FindPublicInformation(ctx context.Context, userID string) (*PublicInformation, error) {
	var info PublicInformation
	if err := s.DB.WithContext(ctx).Where("staff_id = ?", userID).First(&info).Error; err != nil {
		return nil, translateError(err)
	}
	return &info, nil
}

func (s *Store) SavePublicInformation(ctx context.Context, info *PublicInformation) error {
	return translateError(upsertPublicInformation(s.DB.WithContext(ctx), info))
}

func upsertPublicInformation(tx *gorm.DB, info *PublicInformation) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "staff_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"general_info", "need_to_know_info", "useful_info", "updated_at"}),
	}).Create(info).Error
}
