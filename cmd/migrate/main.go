package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"

	"github.com/sirupsen/logrus"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|version]\n", os.Args[0])
	}
	flag.Parse()
	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg, err := config.FromEnv()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	log := logger.WithField("component", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	switch cmd {
	case "up":
		if err := migrate.Apply(ctx, pool); err != nil {
			log.Fatalf("apply migrations: %v", err)
		}
		log.Info("migrations applied")
	case "down":
		if err := migrate.Rollback(ctx, pool); err != nil {
			log.Fatalf("rollback migrations: %v", err)
		}
		log.Info("migrations rolled back")
	case "version":
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			log.Fatalf("read version: %v", err)
		}
		log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("schema version")
	default:
		flag.Usage()
		os.Exit(2)
	}
}
