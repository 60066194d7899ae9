package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "arisan/internal/adapters/email"
	web "arisan/internal/adapters/http"
	"arisan/internal/adapters/imagehost"
	"arisan/internal/adapters/remote"
	"arisan/internal/adapters/storage"
	outboxStorePkg "arisan/internal/adapters/storage/outbox"
	snapshotStorePkg "arisan/internal/adapters/storage/snapshot"
	"arisan/internal/application/orchestrators"
	"arisan/internal/application/state"
	"arisan/internal/config"
	"arisan/internal/domain/outbox"
	"arisan/pkg/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	logging.Setup()

	configPath := flag.String("config", os.Getenv("ARISAN_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// WAL mode with a busy timeout so the pull worker and handlers can
	// share the file.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	timedDB := storage.NewTimedDB(db)
	snapshots := snapshotStorePkg.NewSQLiteStore(timedDB)
	outboxStore := outboxStorePkg.NewSQLiteStore(timedDB)

	// Rehydrate the ledger from the last snapshot, or start from the
	// default group.
	st, found, err := snapshots.Load(context.Background(), time.Now())
	if err != nil {
		log.Fatalf("failed to load snapshot: %v", err)
	}
	if !found {
		slog.Info("snapshot_missing", "detail", "starting with the default group")
	}
	container := state.NewContainer(st)

	// Remote document store
	var remoteClient remote.Client = remote.NoopClient{}
	if cfg.BinAPIKey != "" {
		remoteClient = remote.NewBinClient(cfg.BinBaseURL, cfg.BinID, cfg.BinAPIKey, nil)
		slog.Info("remote_configured", "base_url", cfg.BinBaseURL)
	} else {
		slog.Info("remote_disabled", "detail", "set ARISAN_BIN_API_KEY to sync with the document store")
	}

	// Email sender
	var sender emailPkg.Sender = emailPkg.NewNoopSender()
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		slog.Info("email_configured", "from", cfg.EmailFrom)
	} else if cfg.IsProduction() {
		slog.Warn("email_disabled", "detail", "ARISAN_RESEND_KEY is not set in production")
	}

	// Image host, with inline data URLs as the fallback
	var uploader imagehost.Uploader = imagehost.InlineUploader{}
	if cfg.ImageHostKey != "" {
		uploader = imagehost.NewHostedUploader(cfg.ImageHostURL, cfg.ImageHostKey, nil)
	}

	pullDeps := orchestrators.PullDeps{
		State:     container,
		Remote:    remoteClient,
		Snapshots: snapshots,
		Now:       time.Now,
	}

	// Adopt the remote document on startup so a fresh instance picks up
	// where the group left off. A failed pull is not fatal; the local
	// snapshot stays authoritative until the store comes back.
	if cfg.BinAPIKey != "" {
		if _, err := orchestrators.ExecutePull(context.Background(), pullDeps); err != nil {
			slog.Warn("startup_pull_failed", "error", err)
		}
	}

	executors := map[string]orchestrators.ActionExecutor{
		outbox.ActionPushState: &orchestrators.PushExecutor{
			State:  container,
			Remote: remoteClient,
			Now:    time.Now,
		},
		outbox.ActionNotifyEmail: &orchestrators.NotifyEmailExecutor{
			Sender:  sender,
			ReplyTo: cfg.ReplyTo,
		},
	}
	processor := orchestrators.NewOutboxProcessor(outboxStore, executors, nil)

	stopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, stopCh)
	if cfg.BinAPIKey != "" {
		orchestrators.StartPullWorker(pullDeps, cfg.PullInterval, stopCh)
	}

	deps := &web.Deps{
		State:     container,
		Snapshots: snapshots,
		Outbox:    outboxStore,
		Remote:    remoteClient,
		Sender:    sender,
		Uploader:  uploader,
		Processor: processor,
		ReplyTo:   cfg.ReplyTo,
	}
	handler := web.NewMux(deps, web.LoadCSRFKey(cfg.CSRFKey, cfg.IsProduction()), cfg.IsProduction())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("server_stopping")
	close(stopCh)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown_failed", "error", err)
	}
}
