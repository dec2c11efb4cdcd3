package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rodeoclash/vodon-pro-sub000/internal/autosave"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/bridge"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/cache"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/config"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/handlers"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/library"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/logging"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/playback"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/probe"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/project"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/store"
	"github.com/Rodeoclash/vodon-pro-sub000/internal/telemetry"
)

var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "vodon"
)

var (
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	SessionStartTime time.Time = time.Now()
)

// App bundles everything a running session needs.
type App struct {
	Store      *store.Store
	Bridge     *bridge.Bridge
	Service    *handlers.Service
	Library    *library.Manager
	Telemetry  *telemetry.Manager
	Autosave   *autosave.Service
	LogFile    *os.File
	RootLogger zerolog.Logger
}

func setupLogging() (*os.File, error) {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logPath := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(file, config.GetString("logLevel"))
	Logger = SlogManager.Logger()
	return file, nil
}

func newApp() (*App, error) {
	// Defaults still apply when no config file is present.
	configErr := config.Load(".")
	logFile, err := setupLogging()
	if err != nil {
		return nil, err
	}

	if configErr != nil {
		Logger.Warn("no config file found, using defaults", "error", configErr)
	}

	rootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	st := store.NewStore(rootLogger)
	st.AttachClock(playback.NewClock(config.GetPlaybackConfig().TickInterval))
	sessionCtx := handlers.NewSessionContext()

	SlogManager.GetProjectName = sessionCtx.GetName
	SlogManager.GetVideoCount = func() int {
		return len(st.State().Videos)
	}

	lib := library.NewManager(rootLogger)
	if err := lib.Connect(); err != nil {
		Logger.Error("library unavailable", "error", err)
		lib = nil
	}

	var tel *telemetry.Manager
	if config.GetBool("telemetry.enabled") {
		backupPath := filepath.Join(config.GetString("logsDir"), "telemetry_backup.gz")
		tel = telemetry.NewManager(rootLogger, backupPath)
		if err := tel.Connect(); err != nil {
			Logger.Error("telemetry unavailable", "error", err)
			tel = nil
		}
	}

	provider := playback.NewMemoryProvider()
	prober := cache.NewProber(&probe.FFProber{})

	svc := handlers.NewService(handlers.Dependencies{
		Store:       st,
		Library:     lib,
		Telemetry:   tel,
		Provider:    provider,
		Prober:      prober,
		Reconciler:  project.NewReconciler(provider, rootLogger),
		ProjectsDir: config.GetString("projectsDir"),
		Logger:      Logger,
	}, sessionCtx)

	b, err := bridge.New(logging.NewBridgeLogger(rootLogger))
	if err != nil {
		return nil, fmt.Errorf("failed to create bridge: %w", err)
	}
	svc.Register(b)

	saver := autosave.NewService(autosave.Dependencies{
		Store:       st,
		Interval:    config.GetDuration("autosave.interval"),
		Logger:      Logger,
		Save:        func() (string, error) { return svc.SaveProject(nil) },
		SessionPath: sessionCtx.GetPath,
	})

	Logger.Info("starting up", "version", CurrentVersion, "buildDate", BuildDate)

	return &App{
		Store:      st,
		Bridge:     b,
		Service:    svc,
		Library:    lib,
		Telemetry:  tel,
		Autosave:   saver,
		LogFile:    logFile,
		RootLogger: rootLogger,
	}, nil
}

func (a *App) Close() {
	if a.Autosave != nil {
		a.Autosave.Stop()
	}
	if a.Telemetry != nil {
		if err := a.Telemetry.Close(); err != nil {
			Logger.Error("failed to close telemetry", "error", err)
		}
	}
	if a.Library != nil {
		if err := a.Library.Close(); err != nil {
			Logger.Error("failed to close library", "error", err)
		}
	}
	if a.LogFile != nil {
		a.LogFile.Close()
	}
}

func main() {
	app, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	if err := runCLI(app, os.Args[1:]); err != nil {
		Logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
