package models

import "github.com/google/uuid"

// All lists every persisted model, in dependency order, for AutoMigrate in
// sqlite mode and tests.
func All() []any {
	return []any{
		&Category{},
		&MenuItem{},
		&Role{},
		&User{},
		&UserRole{},
		&CartLine{},
		&OrderHistoryRecord{},
	}
}

// newSequentialID returns a UUIDv7. Ids minted by one process sort in
// creation order, which the (timestamp, id) orderings rely on as a tie-break.
func newSequentialID() (uuid.UUID, error) {
	return uuid.NewV7()
}
