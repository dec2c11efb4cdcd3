package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectDisabled(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("telemetry.enabled", false)

	m := NewManager(zerolog.Nop(), filepath.Join(t.TempDir(), "backup.gz"))
	err := m.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry.enabled is false")
}

func TestConnectFallsBackToBackupFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("telemetry.enabled", true)
	viper.Set("telemetry.protocol", "http")
	viper.Set("telemetry.host", "127.0.0.1")
	viper.Set("telemetry.port", "1")
	viper.Set("telemetry.token", "")
	viper.Set("telemetry.org", "vodon")
	viper.Set("telemetry.bucket", "review_sessions")

	backupPath := filepath.Join(t.TempDir(), "backup.gz")
	m := NewManager(zerolog.Nop(), backupPath)
	require.NoError(t, m.Connect())
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	point := SessionPoint("save", 2, 5, 17.0)
	require.NoError(t, m.WritePoint(context.Background(), point))
	require.NoError(t, m.Close())

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSessionPoint(t *testing.T) {
	point := SessionPoint("load", 3, 7, 42.5)
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	assert.Contains(t, line, "review_session")
	assert.Contains(t, line, "event=load")
	assert.Contains(t, line, "videos=3i")
	assert.Contains(t, line, "bookmarks=7i")
}
