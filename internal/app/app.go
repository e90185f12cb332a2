package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openwrench/passcode/internal/challenge/janitor"
	"github.com/openwrench/passcode/internal/pkg/clock"
	"github.com/openwrench/passcode/internal/pkg/config"
	"github.com/openwrench/passcode/internal/pkg/goroutine"
	"github.com/openwrench/passcode/internal/pkg/idempotency"
	"github.com/openwrench/passcode/internal/pkg/instrument"
	"github.com/openwrench/passcode/internal/pkg/mail"
	"github.com/openwrench/passcode/internal/pkg/messaging"
	"github.com/openwrench/passcode/internal/pkg/router"
	"github.com/openwrench/passcode/internal/pkg/uid"
	"github.com/openwrench/passcode/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	// background workers
	janitor *janitor.Janitor

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
