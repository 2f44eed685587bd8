package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Run наполняет базу стартовыми данными. Повторный запуск безопасен:
// существующие записи пропускаются.
func Run(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("Запуск сидеров...")

	if err := seedUsers(ctx, db); err != nil {
		return err
	}
	if err := seedDevices(ctx, db); err != nil {
		return err
	}

	log.Println("Сидеры выполнены.")
	return nil
}
