package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"careroster/internal/domain/people"
	"careroster/internal/platform/identity"
	"careroster/internal/requestctx"
)

const (
	PeriodFreeTrial = "Free_Trial"
	PeriodMonthly   = "Monthly"
	PeriodAnnually  = "Annually"
)

const MsgInvalidPeriod = "invalid subscription period"

var periodDays = map[string]int{
	PeriodFreeTrial: 14,
	PeriodMonthly:   30,
	PeriodAnnually:  365,
}

// SubscriptionEnd returns the end of a subscription started at start.
func SubscriptionEnd(period string, start time.Time) (time.Time, bool) {
	days, ok := periodDays[period]
	if !ok {
		return time.Time{}, false
	}
	return start.AddDate(0, 0, days), true
}

type SignUpInput struct {
	ExternalUserID     string               `json:"userId"`
	CompanyName        string               `json:"companyName"`
	SubscriptionPeriod string               `json:"subscriptionPeriod"`
	PersonalDetails    people.PersonalInput `json:"personalDetails"`
}

type Account struct {
	Company people.Company `json:"company"`
	Admin   people.Record  `json:"admin"`
}

type Store interface {
	CreateAccount(ctx context.Context, company *people.Company, admin *people.User) error
}

// GormStore creates the company and its first record in one transaction.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) CreateAccount(ctx context.Context, company *people.Company, admin *people.User) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		admin.CompanyID = company.ID
		return people.NewStore(tx).Create(ctx, admin)
	})
}

type MetadataUpdater interface {
	UpdateMetadata(ctx context.Context, externalUserID string, meta identity.Metadata) error
}

type Service struct {
	Store    Store
	People   *people.Service
	Identity MetadataUpdater
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(store Store, peopleSvc *people.Service, idp MetadataUpdater, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, People: peopleSvc, Identity: idp, Log: log, Now: time.Now}
}

// SignUp creates a company with an admin staff record and links it to the
// identity-provider user. A metadata failure is logged, not returned.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Account, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var missing []string
	if strings.TrimSpace(in.CompanyName) == "" {
		missing = append(missing, "companyName")
	}
	if strings.TrimSpace(in.SubscriptionPeriod) == "" {
		missing = append(missing, "subscriptionPeriod")
	}
	if len(missing) > 0 {
		return nil, people.NewValidationError(people.MsgMissingFields, missing...)
	}
	end, ok := SubscriptionEnd(strings.TrimSpace(in.SubscriptionPeriod), now)
	if !ok {
		return nil, people.NewValidationError(MsgInvalidPeriod, "subscriptionPeriod")
	}

	company := &people.Company{ID: uuid.NewString(), Name: strings.TrimSpace(in.CompanyName)}
	personal := in.PersonalDetails
	admin, err := s.People.BuildUser(people.CreateInput{
		Role:            people.RoleAdmin,
		SubRoles:        people.RoleAdmin,
		CompanyID:       company.ID,
		SubscriptionEnd: &end,
		PersonalDetails: &personal,
		WorkDetails: &people.WorkInput{
			WorksAt:        company.Name,
			HiredOn:        now.Format("2006-01-02"),
			Role:           people.RoleAdmin,
			EmploymentType: people.EmploymentFullTime,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.Store.CreateAccount(ctx, company, admin); err != nil {
		return nil, err
	}

	rec, err := s.People.Get(ctx, admin.ID, true)
	if err != nil {
		return nil, err
	}

	if s.Identity != nil && strings.TrimSpace(in.ExternalUserID) != "" {
		meta := identity.Metadata{UserID: admin.ID, CompanyID: company.ID, Role: admin.Role}
		if err := s.Identity.UpdateMetadata(ctx, in.ExternalUserID, meta); err != nil {
			requestctx.Logger(ctx, s.Log).Warn("identity metadata update failed",
				zap.String("external_user_id", in.ExternalUserID),
				zap.String("user_id", admin.ID),
				zap.Error(err),
			)
		}
	}

	return &Account{Company: *company, Admin: rec}, nil
}
