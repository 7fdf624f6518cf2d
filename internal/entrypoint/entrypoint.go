package entrypoint

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/bookprovider/internal/audit"
	"github.com/mrlokans/bookprovider/internal/config"
	"github.com/mrlokans/bookprovider/internal/database"
	"github.com/mrlokans/bookprovider/internal/entities"
	"github.com/mrlokans/bookprovider/internal/notify"
	"github.com/mrlokans/bookprovider/internal/provider"
	"github.com/mrlokans/bookprovider/internal/scheduler"
	"github.com/mrlokans/bookprovider/internal/seed"
	"github.com/mrlokans/bookprovider/internal/tasks"
)

// App is the long-running provider daemon: the facade, its notification bus, the
// task queue delivering changes, and the periodic reseed job.
type App struct {
	cfg *config.Config

	Provider *provider.Provider
	Bus      *notify.Bus

	seedDB     *database.Database
	seeder     *seed.Seeder
	taskClient *tasks.Client
	scheduler  *scheduler.ReseedScheduler
	changeLog  *notify.Subscription

	taskCancel context.CancelFunc
}

// NewApp wires every component from cfg. Nothing runs until Start.
func NewApp(cfg *config.Config) (*App, error) {
	dbCfg := database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
		LogLevel:    cfg.Database.LogLevel,
	}

	app := &App{cfg: cfg, Bus: notify.NewBus()}

	// Seeding replaces both tables in one transaction on its own handle.
	seedDB, err := database.NewDatabase(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.seedDB = seedDB
	app.seeder = seed.NewSeeder(seedDB.DB)
	app.seeder.BookURI = provider.NewResourceID(cfg.Provider.Scheme, cfg.Provider.Authority, "book")
	app.seeder.UserURI = provider.NewResourceID(cfg.Provider.Scheme, cfg.Provider.Authority, "user")

	var journal tasks.ChangeJournal
	if cfg.Audit.Dir != "" {
		journal = audit.NewAuditor(cfg.Audit.Dir)
		log.Printf("Change journal enabled at %s", cfg.Audit.Dir)
	}

	var notifier provider.ChangeNotifier
	if cfg.Tasks.Enabled {
		taskCfg := tasks.ConfigFrom(cfg.Tasks)
		app.taskClient, err = tasks.NewClient(dbCfg.Path, taskCfg)
		if err != nil {
			app.closeStores()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.taskClient.Register(
			tasks.NewChangeQueue(app.Bus, journal, taskCfg),
			tasks.NewReseedQueue(app.seeder, taskCfg),
		)

		changes := tasks.NewChangeNotifier(app.taskClient)
		changes.Fallback = app.Bus
		notifier = changes
	} else {
		notifier = directNotifier(app.Bus, journal)
	}
	app.seeder.Notifier = notifier

	app.Provider, err = provider.NewWithDefaultRoutes(
		database.NewManager(dbCfg),
		cfg.Provider.Authority,
		provider.WithNotifier(notifier),
	)
	if err != nil {
		app.closeStores()
		return nil, err
	}

	app.scheduler = scheduler.NewReseedScheduler(cfg.Seed.ResetSchedule, app.reseed)

	return app, nil
}

// directNotifier publishes and journals synchronously when the task queue is off.
func directNotifier(bus *notify.Bus, journal tasks.ChangeJournal) provider.ChangeNotifier {
	if journal == nil {
		return bus
	}
	return provider.NotifierFunc(func(id provider.ResourceID) {
		bus.Publish(id)
		if _, err := journal.RecordChange(entities.ChangeEvent{URI: id.String()}); err != nil {
			log.Printf("[AUDIT] Failed to journal change of %s: %v", id, err)
		}
	})
}

// reseed is the scheduled job. With the task queue enabled it only enqueues the work.
func (a *App) reseed(ctx context.Context) error {
	if a.taskClient == nil {
		return a.seeder.Seed(ctx)
	}
	id, err := a.taskClient.Enqueue(ctx, tasks.ReseedTask{Reason: "scheduled"})
	if err != nil {
		return fmt.Errorf("failed to enqueue reseed: %w", err)
	}
	log.Printf("[SCHEDULER] Enqueued reseed task %s", id)
	return nil
}

// Start opens the store, starts the task workers, optionally seeds, and starts the
// reseed schedule.
func (a *App) Start(ctx context.Context) error {
	if err := a.Provider.Open(); err != nil {
		return fmt.Errorf("failed to open provider: %w", err)
	}

	a.changeLog = a.Bus.Subscribe(provider.ResourceID{}, true, notify.DefaultBuffer)
	go logChanges(a.changeLog)

	if a.taskClient != nil {
		var taskCtx context.Context
		taskCtx, a.taskCancel = context.WithCancel(context.Background())
		go a.taskClient.Start(taskCtx)
	}

	if a.cfg.Seed.OnStart {
		if err := a.seeder.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed sample data: %w", err)
		}
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	return nil
}

func logChanges(sub *notify.Subscription) {
	for id := range sub.C {
		log.Printf("[NOTIFY] %s changed", id)
	}
}

// Shutdown stops the scheduler and task workers, then releases every store. Safe to
// call once, even if Start failed.
func (a *App) Shutdown(ctx context.Context) {
	a.scheduler.Stop()

	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
		if a.taskCancel != nil {
			a.taskCancel()
		}
	}

	if a.changeLog != nil {
		a.changeLog.Close()
	}

	if err := a.Provider.Close(); err != nil {
		log.Printf("Error closing provider: %v", err)
	}
	a.closeStores()
}

func (a *App) closeStores() {
	if a.taskClient != nil {
		if err := a.taskClient.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if err := a.seedDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// Serve blocks until SIGINT or SIGTERM, then shuts app down within the configured
// timeout.
func Serve(app *App, cfg *config.Config) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down provider, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	app.Shutdown(ctx)
	log.Println("Provider exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Provider v%s", version)
	log.Printf("Store: %s, authority: %s", cfg.Database.Path, cfg.Provider.Authority)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize provider: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		app.Shutdown(ctx)
		log.Fatalf("Failed to start provider: %v", err)
	}

	Serve(app, cfg)
}
