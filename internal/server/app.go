// Package server initializes and runs the contribution tracking server.
// It wires configuration, storage, field encryption and the HTTP API
// together and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/contribvault/internal/cryptox"
	"github.com/dmitrijs2005/contribvault/internal/logging"
	"github.com/dmitrijs2005/contribvault/internal/server/config"
	"github.com/dmitrijs2005/contribvault/internal/server/httpapi"
	"github.com/dmitrijs2005/contribvault/internal/server/piicodec"
	"github.com/dmitrijs2005/contribvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/contribvault/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSONLogger()

	db, err := repomanager.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// the key is derived once; a bad secret must fail startup, not the
	// first write
	kp, err := cryptox.NewKeyProvider(cfg.EncryptionSecret, cfg.EncryptionSalt)
	if err != nil {
		return nil, fmt.Errorf("key init error: %w", err)
	}
	cipher, err := kp.FieldCipher()
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}
	codec := piicodec.New(cipher)

	directory := services.NewDirectoryService(db, rm, logger)
	contributions := services.NewContributionService(db, rm, codec, directory, logger)
	loginLogs := services.NewLoginLogService(db, rm, codec, logger)
	exports := services.NewExportService(cfg, logger)

	handler := httpapi.NewHandler(contributions, directory, loginLogs, exports, logger)
	srv := httpapi.NewServer(cfg.EndpointAddr, handler, cfg.SecretKey, logger)

	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
