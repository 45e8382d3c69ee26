package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"careroster/internal/domain/documents"
	"careroster/internal/domain/people"
	"careroster/internal/domain/teams"
)

// Models lists every table in creation order.
func Models() []any {
	models := people.AllModels()
	return append(models, &teams.Team{}, &documents.Document{})
}

func Migrate(ctx context.Context, gdb *gorm.DB) error {
	for _, model := range Models() {
		if err := gdb.WithContext(ctx).AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	return nil
}
