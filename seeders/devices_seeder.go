package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

type deviceSeed struct {
	Barcode          string
	Name             string
	Type             string
	Brand            string
	Location         string
	BaselineQuantity int64
	MinimumQuantity  int64
}

var devicesData = []deviceSeed{
	{Barcode: "4870001000011", Name: "Ноутбук Dell Latitude 5440", Type: "laptop", Brand: "Dell", Location: "Склад А", BaselineQuantity: 10, MinimumQuantity: 2},
	{Barcode: "4870001000028", Name: "Монитор Samsung 24\"", Type: "monitor", Brand: "Samsung", Location: "Склад А", BaselineQuantity: 25, MinimumQuantity: 5},
	{Barcode: "4870001000035", Name: "Клавиатура Logitech K120", Type: "keyboard", Brand: "Logitech", Location: "Склад Б", BaselineQuantity: 40, MinimumQuantity: 10},
	{Barcode: "4870001000042", Name: "Мышь Logitech B100", Type: "mouse", Brand: "Logitech", Location: "Склад Б", BaselineQuantity: 40, MinimumQuantity: 10},
	{Barcode: "4870001000059", Name: "Принтер HP LaserJet M404", Type: "printer", Brand: "HP", Location: "Склад А", BaselineQuantity: 3, MinimumQuantity: 1},
}

func seedDevices(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'devices'...")

	query := `INSERT INTO devices (barcode, name, type, brand, location, status, baseline_quantity, minimum_quantity)
			  VALUES ($1, $2, $3, $4, $5, 'available', $6, $7)
			  ON CONFLICT (barcode) DO NOTHING;`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, d := range devicesData {
		if _, err := tx.Exec(ctx, query, d.Barcode, d.Name, d.Type, d.Brand, d.Location, d.BaselineQuantity, d.MinimumQuantity); err != nil {
			log.Printf("Ошибка при вставке устройства '%s': %v", d.Name, err)
			return err
		}
	}

	return tx.Commit(ctx)
}
