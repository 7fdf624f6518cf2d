// Package books provides typed access to the book table.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	err := repo.ReplaceAll(seed.DefaultBooks())
package books

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookprovider/internal/entities"
)

// Repository handles book table operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll swaps the table contents for books in a single transaction.
func (r *Repository) ReplaceAll(books []entities.Book) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Book{}).Error; err != nil {
			return fmt.Errorf("failed to clear books: %w", err)
		}
		if len(books) == 0 {
			return nil
		}
		if err := tx.Create(&books).Error; err != nil {
			return fmt.Errorf("failed to insert books: %w", err)
		}
		return nil
	})
}
