package config

// Default paths and identifiers
const (
	// DefaultDatabasePath is the default path for the provider database
	DefaultDatabasePath = "./book_provider.db"

	// DefaultAuthority is the authority the book and user routes are registered under
	DefaultAuthority = "org.example.book.provider"

	// DefaultScheme is the scheme used when rendering resource identifiers
	DefaultScheme = "content"
)
