// Package users provides typed access to the user table.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	err := repo.ReplaceAll(seed.DefaultUsers())
package users

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookprovider/internal/entities"
)

// Repository handles user table operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll swaps the table contents for users in a single transaction.
func (r *Repository) ReplaceAll(users []entities.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.User{}).Error; err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		if len(users) == 0 {
			return nil
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("failed to insert users: %w", err)
		}
		return nil
	})
}
