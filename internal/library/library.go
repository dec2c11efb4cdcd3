// Package library keeps the catalog of projects a reviewer has worked on:
// where each project file lives, when it was last opened, and a copy of
// its document for the recents screen.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/config"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/project"
)

var ErrProjectNotFound = errors.New("project not found in library")

// ProjectRecord is one catalog row. Document holds the full saved
// document so the recents screen can show video counts and thumbnails
// without touching the project file itself.
type ProjectRecord struct {
	ID         uint           `gorm:"primarykey"`
	Name       string         `gorm:"index"`
	Path       string         `gorm:"uniqueIndex"`
	Document   datatypes.JSON `gorm:"type:json"`
	VideoCount int
	OpenedAt   time.Time `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Manager owns the catalog connection.
type Manager struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		Logger: log.With().Str("component", "library").Logger(),
	}
}

// Connect opens the catalog database. The postgres driver is tried first
// when configured; failures fall back to the local sqlite file so the
// catalog keeps working offline.
func (m *Manager) Connect() error {
	var err error

	cfg := config.GetLibraryConfig()
	if cfg.Driver == "postgres" {
		m.DB, err = m.openPostgres()
		if err != nil {
			m.Logger.Error().Err(err).Msg("failed to connect to postgres library, falling back to sqlite")
			m.DB, err = m.openSqlite(cfg.Path)
		}
	} else {
		m.DB, err = m.openSqlite(cfg.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to open library database: %w", err)
	}

	if err := m.DB.AutoMigrate(&ProjectRecord{}); err != nil {
		return fmt.Errorf("failed to migrate library schema: %w", err)
	}
	m.Logger.Info().Str("driver", m.DB.Dialector.Name()).Msg("library connected")
	return nil
}

func (m *Manager) openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// openSqlite opens the catalog file, or an in-memory database when path is
// empty.
func (m *Manager) openSqlite(path string) (*gorm.DB, error) {
	dsn := "file::memory:?cache=shared"
	if path != "" {
		dsn = path
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// Record upserts a project into the catalog after a save or load and
// stamps it as the most recently opened.
func (m *Manager) Record(name string, path string, doc *project.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	record := ProjectRecord{
		Name:       name,
		Path:       path,
		Document:   datatypes.JSON(raw),
		VideoCount: len(doc.State.Videos),
		OpenedAt:   time.Now().UTC(),
	}

	var existing ProjectRecord
	err = m.DB.Where("path = ?", path).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return m.DB.Save(&record).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return m.DB.Create(&record).Error
	default:
		return err
	}
}

// Recent returns the catalog ordered by most recently opened.
func (m *Manager) Recent(limit int) ([]ProjectRecord, error) {
	var records []ProjectRecord
	err := m.DB.Order("opened_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// Get returns the stored document for a project path.
func (m *Manager) Get(path string) (*project.Document, error) {
	var record ProjectRecord
	if err := m.DB.Where("path = ?", path).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	var doc project.Document
	if err := json.Unmarshal(record.Document, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	return &doc, nil
}

// Forget removes a project from the catalog. The project file itself is
// left alone.
func (m *Manager) Forget(path string) error {
	result := m.DB.Where("path = ?", path).Delete(&ProjectRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
