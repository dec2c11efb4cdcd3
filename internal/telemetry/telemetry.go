// Package telemetry ships anonymous review-session metrics to InfluxDB
// when the reviewer has opted in. When the server is unreachable points
// are appended to a gzipped line-protocol file instead, so a later run
// can replay them.
package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/config"
)

// Manager handles the InfluxDB connection and writes.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Logger       zerolog.Logger
	BackupPath   string
}

func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		IsValid:    false,
		Logger:     log.With().Str("component", "telemetry").Logger(),
		BackupPath: backupPath,
	}
}

// Connect establishes a connection to InfluxDB. Errors out immediately
// when telemetry is disabled in config.
func (m *Manager) Connect() error {
	cfg := config.GetTelemetryConfig()
	if !cfg.Enabled {
		return errors.New("telemetry.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", cfg.Protocol, cfg.Host, cfg.Port),
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(100).
			SetFlushInterval(5000),
	)

	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		m.IsValid = false
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to reach InfluxDB, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %v", err)
			}
			m.BackupWriter = gzip.NewWriter(file)
		}
		return nil
	}

	m.IsValid = true
	m.Writer = m.Client.WriteAPI(cfg.Org, cfg.Bucket)

	errorsCh := m.Writer.Errors()
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Msg("Error sending data to InfluxDB")
		}
	}(errorsCh)

	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(ctx context.Context, point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Duration(1*time.Nanosecond))
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to backup file: %s", err)
	}
	return nil
}

// SessionPoint builds the measurement written when a project is saved or
// loaded.
func SessionPoint(event string, videoCount int, bookmarkCount int, fullDuration float64) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("review_session").
		AddTag("event", event).
		AddField("videos", videoCount).
		AddField("bookmarks", bookmarkCount).
		AddField("fullDuration", fullDuration).
		SetTime(time.Now())
}

// Close flushes pending writes and shuts the client down.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.BackupWriter != nil {
		return m.BackupWriter.Close()
	}
	return nil
}
