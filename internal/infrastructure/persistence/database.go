package persistence

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	applogger "github.com/erp/ordersync/internal/infrastructure/logger"
	"github.com/erp/ordersync/internal/infrastructure/persistence/models"
)

// Database holds the journal database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the journal database at the given path and runs
// migrations. The journal is a local SQLite file; a daemon instance is the
// only writer.
func NewDatabase(path string) (*Database, error) {
	return newDatabase(path, gormlogger.Default.LogMode(gormlogger.Silent))
}

// NewDatabaseWithLogger opens the journal database logging queries through zap
func NewDatabaseWithLogger(path string, zapLogger *zap.Logger, logLevel gormlogger.LogLevel) (*Database, error) {
	return newDatabase(path, applogger.NewGormLogger(zapLogger, logLevel))
}

func newDatabase(path string, gl gormlogger.Interface) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&models.SyncRecordModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
