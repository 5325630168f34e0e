package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCategories mirrors the rows inserted by the catalog migration.
var SeedCategories = []string{"Burger", "Pizza"}

// AutoMigrateModels creates the schema straight from the gorm models and seeds
// the reference rows. Used for sqlite and in tests.
func AutoMigrateModels(ctx context.Context, gdb *gorm.DB) error {
	conn := gdb.WithContext(ctx)
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, name := range SeedCategories {
		if err := conn.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Category{Name: name}).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}
	for _, role := range []enums.Role{enums.RoleAdmin, enums.RoleCustomer} {
		if err := conn.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Role{Name: role.String()}).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
	}
	return nil
}
