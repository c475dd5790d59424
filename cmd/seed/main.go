package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/cashswap-backend/internal/app"
	"github.com/yungbote/cashswap-backend/internal/data/db"
	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/platform/envutil"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
	"github.com/yungbote/cashswap-backend/internal/seed"
)

func main() {
	fixturePath := flag.String("fixture", "", "YAML fixture to load (defaults to the built-in campus demo)")
	flag.Parse()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, *fixturePath); err != nil {
		log.Error("seed failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *logger.Logger, fixturePath string) error {
	cfg := app.LoadConfig(log)
	if cfg.DB.Driver == db.DriverMemory {
		return fmt.Errorf("DB_DRIVER=memory has nothing to seed; use postgres or sqlite")
	}

	var (
		fixture *seed.Fixture
		err     error
	)
	if fixturePath == "" {
		fixture, err = seed.Campus()
	} else {
		var f *os.File
		f, err = os.Open(fixturePath)
		if err != nil {
			return err
		}
		defer f.Close()
		fixture, err = seed.Load(f)
	}
	if err != nil {
		return err
	}

	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		return err
	}

	s := seed.NewSeeder(log, repos.NewUserRepo(svc.DB(), log), repos.NewRequestRepo(svc.DB(), log))
	res, err := s.Apply(context.Background(), fixture)
	if err != nil {
		return err
	}
	fmt.Printf("users created=%d skipped=%d, requests created=%d\n", res.UsersCreated, res.UsersSkipped, res.RequestsCreated)
	return nil
}
