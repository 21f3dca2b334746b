package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/printflow/backoffice/internal/config"
	"github.com/printflow/backoffice/internal/logger"
	"github.com/printflow/backoffice/internal/models"
)

// ConnectAndMigrate opens the database and brings the schema up to date.
// MIGRATIONS=1 runs the SQL files under ./migrations via golang-migrate;
// otherwise AutoMigrate keeps the dev loop simple.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	log := logger.WithComponent("db")
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := gormlogger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = gormlogger.Info
	}
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("retrying DB connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	log.Info().Str("dsn", maskDSN(dsn)).Msg("connected")

	if config.ParseBool("MIGRATIONS", false) {
		if err := RunSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := autoMigrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"payables", "notifications"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if config.ParseBool("DB_SEED", false) {
		seed(db)
	}
	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.User{}, &models.Supplier{}, &models.Tag{}, &models.Payable{}, &models.Notification{},
	}
	for _, m := range modelsToMigrate {
		if migErr := db.AutoMigrate(m); migErr != nil {
			return fmt.Errorf("automigrate %T: %w", m, migErr)
		}
	}
	return nil
}

func seed(db *gorm.DB) {
	baseTags := []models.Tag{
		{Name: "offset", Color: "#4f46e5"},
		{Name: "digital", Color: "#16a34a"},
		{Name: "paper", Color: "#ca8a04"},
		{Name: "maintenance", Color: "#dc2626"},
	}
	for _, tg := range baseTags {
		var existing models.Tag
		if err := db.Where("name = ?", tg.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&tg)
		}
	}
}

// RunSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func RunSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func maskDSN(dsn string) string {
	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	return masked
}
