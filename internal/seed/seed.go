// Package seed restores the provider's sample rows.
package seed

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mrlokans/bookprovider/internal/database/books"
	"github.com/mrlokans/bookprovider/internal/database/users"
	"github.com/mrlokans/bookprovider/internal/entities"
	"github.com/mrlokans/bookprovider/internal/provider"
)

var defaultBooks = []entities.Book{
	{ID: 3, Name: "Android"},
	{ID: 4, Name: "iOS"},
	{ID: 5, Name: "HTML5"},
}

var defaultUsers = []entities.User{
	{ID: 1, Name: "Spike", IsMale: true},
	{ID: 2, Name: "Wang", IsMale: false},
}

// DefaultBooks returns a copy of the sample books.
func DefaultBooks() []entities.Book {
	return append([]entities.Book(nil), defaultBooks...)
}

// DefaultUsers returns a copy of the sample users.
func DefaultUsers() []entities.User {
	return append([]entities.User(nil), defaultUsers...)
}

// Seeder replaces the contents of both tables with the sample rows.
type Seeder struct {
	db *gorm.DB

	// Notifier, when set, is told once per table after a successful seed.
	Notifier provider.ChangeNotifier
	BookURI  provider.ResourceID
	UserURI  provider.ResourceID
}

// NewSeeder creates a seeder over an open, schema-ensured handle.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		BookURI: provider.BookURI,
		UserURI: provider.UserURI,
	}
}

// Seed wipes both tables and inserts the sample rows. Running it again yields the
// same contents.
func (s *Seeder) Seed(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	if err := books.NewRepository(db).ReplaceAll(DefaultBooks()); err != nil {
		return fmt.Errorf("failed to seed books: %w", err)
	}
	if err := users.NewRepository(db).ReplaceAll(DefaultUsers()); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Printf("Seeded %d books and %d users", len(defaultBooks), len(defaultUsers))

	if s.Notifier != nil {
		s.Notifier.NotifyChange(s.BookURI)
		s.Notifier.NotifyChange(s.UserURI)
	}
	return nil
}
