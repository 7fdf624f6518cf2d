package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookprovider/internal/audit"
	"github.com/mrlokans/bookprovider/internal/database"
	"github.com/mrlokans/bookprovider/internal/notify"
	"github.com/mrlokans/bookprovider/internal/provider"
	"github.com/mrlokans/bookprovider/internal/seed"
	"github.com/mrlokans/bookprovider/internal/tasks"
)

// =============================================================================
// Store
// =============================================================================

// Opener implementations
var _ provider.Opener = (*database.Manager)(nil)

// =============================================================================
// Change Notification
// =============================================================================

// ChangeNotifier implementations
var _ provider.ChangeNotifier = (*notify.Bus)(nil)
var _ provider.ChangeNotifier = (*tasks.ChangeNotifier)(nil)
var _ provider.ChangeNotifier = provider.NotifierFunc(nil)

// Queue collaborators
var _ tasks.ChangeSink = (*notify.Bus)(nil)
var _ tasks.ChangeJournal = (*audit.Auditor)(nil)

// =============================================================================
// Sample Data
// =============================================================================

var _ tasks.Seeder = (*seed.Seeder)(nil)
