package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-system/pkg/utils"
)

type userSeed struct {
	Username   string
	Password   string
	FullName   string
	Role       string
	Department string
}

// Первый пользователь получает id=1 и становится главным администратором.
var usersData = []userSeed{
	{Username: "admin", Password: "admin123", FullName: "Главный администратор", Role: "admin", Department: "ИТ отдел"},
	{Username: "storekeeper", Password: "store123", FullName: "Кладовщик Склада", Role: "admin", Department: "Склад"},
	{Username: "employee", Password: "employee123", FullName: "Рядовой Сотрудник", Role: "employee", Department: "Бухгалтерия"},
}

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'users'...")

	query := `INSERT INTO users (username, password_hash, full_name, role, department, is_active)
			  VALUES ($1, $2, $3, $4, $5, TRUE)
			  ON CONFLICT (username) DO NOTHING;`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range usersData {
		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, u.Username, hash, u.FullName, u.Role, u.Department); err != nil {
			log.Printf("Ошибка при вставке пользователя '%s': %v", u.Username, err)
			return err
		}
	}

	return tx.Commit(ctx)
}
