package main

import (
	"context"
	"log"

	"inventory-system/pkg/config"
	"inventory-system/pkg/database/postgresql"
	"inventory-system/seeders"
)

func main() {
	ctx := context.Background()
	cfg := config.New()

	if err := postgresql.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		log.Fatalf("миграции не применились: %v", err)
	}

	db, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("не удалось подключиться к БД: %v", err)
	}
	defer db.Close()

	if err := seeders.Run(ctx, db); err != nil {
		log.Fatalf("ошибка сидеров: %v", err)
	}
}
