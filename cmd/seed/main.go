package main

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	shippingrepo "storefront/internal/repository/shipping"
	"storefront/internal/seed"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	log := logger.WithField("component", "seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	err = seed.Apply(ctx, seed.Writers{
		Categories: categoryrepo.NewPostgres(pool),
		Products:   productrepo.NewPostgres(pool, logger),
		Shipping:   shippingrepo.NewPostgres(pool),
	}, log)
	if err != nil {
		log.Fatalf("seed apply: %v", err)
	}
}
