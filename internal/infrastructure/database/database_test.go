package database

import (
	"testing"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

func TestConnectInvalidDSN(t *testing.T) {
	_, err := Connect(Config{
		WriteDSN:    "://not-a-dsn",
		MaxIdle:     1,
		MaxOpen:     1,
		MaxLifetime: time.Minute,
		LogLevel:    gormlogger.Silent,
	})
	if err == nil {
		t.Fatal("expected an error for an unparsable DSN")
	}
}

func TestRegisterSchemaForAutoMigrate(t *testing.T) {
	type sampleEntity struct {
		ID uint
	}

	before := len(SchemaRegistry)
	RegisterSchemaForAutoMigrate(&sampleEntity{})
	if len(SchemaRegistry) != before+1 {
		t.Fatalf("registry size = %d, want %d", len(SchemaRegistry), before+1)
	}
}
