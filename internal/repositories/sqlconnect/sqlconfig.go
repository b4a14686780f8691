package sqlconnect

import (
	"database/sql"
	"fmt"
	"time"

	"calliope_members/internal/config"

	_ "github.com/go-sql-driver/mysql"
)

var DB *sql.DB

func ConnectDb(cfg *config.Config) error {
	if DB != nil {
		return nil
	}

	fmt.Println("Connecting to MariaDB...")

	connectionString := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open DB connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping DB: %w", err)
	}

	fmt.Println("✅ Connected to MariaDB")
	return nil
}
