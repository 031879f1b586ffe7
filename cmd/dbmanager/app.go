package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/config"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/export"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/filestore"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/filestore/minio"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/savedquery"
)

// app holds what every subcommand shares. The session is opened lazily so
// commands that never touch the database do not need one.
type app struct {
	configPath string
	envFile    string
	schema     string

	cfg   *config.Config
	log   *logger.Logger
	sess  *database.Session
	store filestore.Store
}

func (a *app) load(ctx context.Context) error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = []string{a.envFile}
	}
	cfg, err := config.Load(a.configPath, envFiles...)
	if err != nil {
		return err
	}
	if a.schema != "" {
		cfg.Database.Schema = a.schema
	}
	a.cfg = cfg
	a.log = logger.New(cfg.Logger())
	logger.SetGlobal(a.log)
	return nil
}

// session opens the database session on first use.
func (a *app) session(ctx context.Context) (*database.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	dbCfg, err := a.cfg.DatabaseSettings()
	if err != nil {
		return nil, err
	}
	drv, err := database.NewDriver(dbCfg)
	if err != nil {
		return nil, err
	}
	sess, err := database.NewSession(a.log.WithContext(ctx), drv, dbCfg)
	if err != nil {
		return nil, err
	}
	a.sess = sess
	return sess, nil
}

func (a *app) savedStore() (*savedquery.Store, error) {
	return savedquery.Open(a.cfg.SavedQueries)
}

// uploads connects to object storage when it is configured. A nil store
// with a nil error means uploads are off.
func (a *app) uploads(ctx context.Context) (filestore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	sc := a.cfg.StorageSettings()
	if sc == nil {
		return nil, nil
	}
	st, err := minio.New(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("object storage %s: %w", sc.Endpoint, err)
	}
	a.store = st
	return st, nil
}

func (a *app) exporter(ctx context.Context) (*export.Exporter, error) {
	var opts []export.Option
	st, err := a.uploads(ctx)
	if err != nil {
		return nil, err
	}
	if st != nil {
		sc := a.cfg.StorageSettings()
		ttl := sc.PresignTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		opts = append(opts, export.WithStore(st, sc.Bucket, ttl))
	}
	return export.New(a.cfg.Export.Dir, opts...), nil
}

// ctx attaches the configured logger to a command context.
func (a *app) ctx(ctx context.Context) context.Context {
	return a.log.WithContext(ctx)
}
