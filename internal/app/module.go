package app

import (
	"log/slog"
	"os"

	"github.com/openwrench/passcode/internal/challenge"
)

func (a *App) initModules() {
	jan, err := challenge.New(challenge.Dependency{
		DBConn:      a.dbConn,
		Mail:        a.mail,
		Goroutine:   a.goroutine,
		Router:      a.router,
		Idempotency: a.idemp,
		Messaging:   a.messaging,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		Clock:       a.clock,
		Validator:   a.validator,
	})
	if err != nil {
		slog.Error("failed to init module challenge", "error", err)
		os.Exit(1)
	}

	a.janitor = jan
}
