// Package interfaces documents the abstractions the provider is assembled from.
//
// # Interface Categories
//
// ## Store
//
//   - Opener: opens the store handle and ensures its schema (internal/provider/provider.go).
//     database.Manager is the production implementation; tests substitute openers
//     that count calls or fail.
//
// ## Change Notification
//
//   - ChangeNotifier: told once per successful mutation (internal/provider/notifier.go).
//     Implemented by notify.Bus (in-process fan-out) and tasks.ChangeNotifier
//     (durable delivery through the task queue).
//   - ChangeSink: where queued changes are published (internal/tasks/change.go).
//   - ChangeJournal: where delivered changes are recorded (internal/tasks/change.go).
//
// ## Sample Data
//
//   - Seeder: restores the sample rows (internal/tasks/reseed.go).
//
// # Adding a New Table
//
//  1. Declare its schema in internal/database/schema.go and add it to DefaultSchemas.
//
//     var NoteSchema = TableSchema{
//         Name: "note",
//         Columns: []Column{
//             {Name: "_id", Type: ColumnInteger, PrimaryKey: true},
//             {Name: "body", Type: ColumnText, Nullable: true},
//         },
//     }
//
//  2. Register a route for it:
//
//     routes, err := provider.NewRouteTable(append(
//         provider.DefaultRoutes(authority),
//         provider.Route{Authority: authority, Path: "note", Table: "note"},
//     )...)
//
//  3. Bump database.SchemaVersion and set Manager.OnUpgrade if existing stores need
//     migrating.
//
// # Adding a New Notifier
//
// Implement NotifyChange and pass it with provider.WithNotifier. Notifiers must not
// block: the mutation that triggered them waits for NotifyChange to return.
//
//	var _ provider.ChangeNotifier = (*MyNotifier)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the checks in this module.
package interfaces
