package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"careroster/internal/domain/people"
	"careroster/internal/domain/teams"
	"careroster/internal/platform/config"
)

const defaultTeamName = "General"

// Seed makes sure a demo company with one empty team exists. It is safe to
// run on every start.
func Seed(ctx context.Context, gdb *gorm.DB, cfg config.Config) (string, error) {
	name := strings.TrimSpace(cfg.SeedCompanyName)
	if name == "" {
		return "", nil
	}
	companyID, err := ensureCompany(ctx, gdb, name)
	if err != nil {
		return "", err
	}
	if err := ensureTeam(ctx, gdb, companyID, defaultTeamName); err != nil {
		return "", err
	}
	return companyID, nil
}

func ensureCompany(ctx context.Context, gdb *gorm.DB, name string) (string, error) {
	var company people.Company
	err := gdb.WithContext(ctx).Where("name = ?", name).First(&company).Error
	if err == nil {
		return company.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	company = people.Company{Name: name}
	if err := gdb.WithContext(ctx).Create(&company).Error; err != nil {
		return "", err
	}
	return company.ID, nil
}

func ensureTeam(ctx context.Context, gdb *gorm.DB, companyID, name string) error {
	var team teams.Team
	err := gdb.WithContext(ctx).Where("company_id = ? AND name = ?", companyID, name).First(&team).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return gdb.WithContext(ctx).Create(&teams.Team{CompanyID: companyID, Name: name}).Error
}
