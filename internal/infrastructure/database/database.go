package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"

	"pulse-server/internal/infrastructure/logger"
)

const TablePrefix = "pulse."

var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

// Config holds database configuration
type Config struct {
	WriteDSN    string
	ReadDSN     string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// Connect creates a new database connection with the given configuration.
// When a separate read DSN is configured, reads are routed to it through
// dbresolver.
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.WriteDSN), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   TablePrefix,
			SingularTable: false,
		},
		Logger: gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("unable to connect to database")
		return nil, err
	}

	if cfg.ReadDSN != "" && cfg.ReadDSN != cfg.WriteDSN {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.ReadDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	log := logger.GetLogger()
	log.Info().Msg("Successfully connected to database")
	return db, nil
}

// NewDB creates a new database connection using DSNs
func NewDB(writeDSN, readDSN string) (*gorm.DB, error) {
	return Connect(Config{
		WriteDSN:    writeDSN,
		ReadDSN:     readDSN,
		MaxIdle:     10,
		MaxOpen:     25,
		MaxLifetime: 1 * time.Hour,
		LogLevel:    gormlogger.Silent,
	})
}

// Migration creates the schema and auto-migrates every registered entity.
func Migration(db *gorm.DB) error {
	schemaName := TablePrefix[:len(TablePrefix)-1]

	if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", schemaName)).Error; err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log := logger.GetLogger()
	for _, model := range SchemaRegistry {
		if err := db.AutoMigrate(model); err != nil {
			log.Error().
				Err(err).
				Msgf("failed to auto migrate schema: %T", model)
			return err
		}
	}
	return nil
}
