package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	photoflow "github.com/SajalTalukder/photoflow-backend"
	"github.com/SajalTalukder/photoflow-backend/mailer"
	"github.com/SajalTalukder/photoflow-backend/media"
	"github.com/SajalTalukder/photoflow-backend/server"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// mediaService bundles the object store with image normalization for the
// HTTP layer.
type mediaService struct {
	*media.Store
}

func (mediaService) Normalize(data []byte) ([]byte, error) {
	return media.NormalizeJPEG(data)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("photoflow"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	logger := lgr.GetLogger("main")

	if err := run(lgr); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(lgr *glog.BaseLogger) error {
	logger := lgr.GetLogger("main")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, err := photoflow.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if err := cfg.ValidateSecrets(); err != nil {
		return err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Persistence.DSN)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	photoflow.RegisterModels(db)

	ctx := context.Background()
	if err := photoflow.InitSchema(ctx, db); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to initialize schema")
	}

	repo := photoflow.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return err
	}

	tokens := photoflow.NewTokenService(
		[]byte(cfg.Auth.SigningKey),
		cfg.Auth.TokenExpiration,
		cfg.Auth.Issuer,
		lgr.GetLogger("tokens"),
	)

	mail := mailer.NewClient(mailer.Config{
		Endpoint:    cfg.Mailer.Endpoint,
		APIKey:      cfg.Mailer.APIKey,
		SenderName:  cfg.Mailer.SenderName,
		SenderEmail: cfg.Mailer.SenderEmail,
	}, mailer.WithLogger(lgr.GetLogger("mailer")))

	store, err := media.NewStore(ctx, media.Config{
		Endpoint:       cfg.Media.Endpoint,
		Region:         cfg.Media.Region,
		Bucket:         cfg.Media.Bucket,
		AccessKey:      cfg.Media.AccessKey,
		SecretKey:      cfg.Media.SecretKey,
		PublicBaseURL:  cfg.Media.PublicBaseURL,
		DisableTLS:     cfg.Media.DisableTLS,
		ForcePathStyle: cfg.Media.ForcePathStyle,
	})
	if err != nil {
		return err
	}

	accounts := photoflow.NewAccountService(repo, tokens, mail,
		photoflow.WithAccountLogger(lgr.GetLogger("accounts")),
	)

	sweeper := photoflow.NewOTPSweeper(repo, lgr.GetLogger("sweeper"), photoflow.DefaultSweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	app := server.New(server.Dependencies{
		Config:   cfg,
		Logger:   lgr.GetLogger("http"),
		Repo:     repo,
		Accounts: accounts,
		Tokens:   tokens,
		Media:    mediaService{store},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	logger.Info("server started", "port", cfg.Port, "environment", cfg.Environment)

	select {
	case err := <-errCh:
		return err
	case sig := <-exitSignal():
		logger.Info("shutting down", "signal", sig.String())
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to shut down cleanly")
	}

	return nil
}

func exitSignal() chan os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return ch
}
