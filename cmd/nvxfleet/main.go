// NVX Fleet - AV-over-IP endpoint supervisor
//
// This is the main entry point for the NVX fleet supervisor. It registers a
// fixed list of DM-NVX encoders and decoders through the MQTT device bridge,
// fans their driver events out to the configured sinks, and answers status
// queries over the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/nvx-fleet/migrations"

	"github.com/nerrad567/nvx-fleet/internal/api"
	"github.com/nerrad567/nvx-fleet/internal/audit"
	"github.com/nerrad567/nvx-fleet/internal/auth"
	"github.com/nerrad567/nvx-fleet/internal/bridges/nvx"
	"github.com/nerrad567/nvx-fleet/internal/events"
	"github.com/nerrad567/nvx-fleet/internal/fleet"
	"github.com/nerrad567/nvx-fleet/internal/history"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/config"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/database"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/influxdb"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/logging"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/mqtt"
	"github.com/nerrad567/nvx-fleet/internal/status"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if opts.tokenRole != "" {
		if err := mintToken(getConfigPath(), opts, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting NVX fleet supervisor",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "endpoints", len(cfg.Fleet.Endpoints))

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	historyRepo := history.NewSQLiteRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	bridge, err := nvx.NewBridge(nvx.BridgeOptions{
		MQTTClient: mqttClient,
		QoS:        byte(cfg.MQTT.QoS),
		Logger:     log.With("component", "nvx"),
	})
	if err != nil {
		return fmt.Errorf("creating NVX bridge: %w", err)
	}
	defer func() {
		log.Info("closing NVX bridge")
		bridge.Close()
	}()

	registry := fleet.NewRegistry(bridge.NewDriver)
	registry.SetLogger(log.With("component", "fleet"))
	if addErr := registry.AddAll(endpointConfigs(cfg.Fleet.Endpoints)); addErr != nil {
		return fmt.Errorf("loading fleet: %w", addErr)
	}

	statusSvc := status.NewService(registry)
	statusSvc.SetLogger(log.With("component", "status"))

	dispatcher := events.NewDispatcher(events.Options{
		Logger:     log.With("component", "events"),
		Reaffirmer: statusSvc,
	})

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.New(api.Deps{
			Config:   cfg.API,
			WS:       cfg.WebSocket,
			Security: cfg.Security,
			Logger:   log.With("component", "api"),
			Status:   statusSvc,
			Fleet:    registry,
			History:  historyRepo,
			Audit:    auditRepo,
			Version:  version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
	}

	closeSinks := wireSinks(dispatcher, sinkDeps{
		queueSize: cfg.Fleet.EventQueueSize,
		logger:    log,
		mqtt:      mqttClient,
		history:   historyRepo,
		influx:    influxClient,
		api:       apiServer,
	})
	defer closeSinks()

	if attachErr := dispatcher.Attach(registry); attachErr != nil {
		return fmt.Errorf("attaching event dispatcher: %w", attachErr)
	}

	results := registry.RegisterAll()
	stats := registry.Stats()
	log.Info("fleet registration complete",
		"endpoints", len(results),
		"registered", stats.Registered,
		"failed", stats.Failed,
	)

	if apiServer != nil {
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	if retention := cfg.GetHistoryRetention(); retention > 0 {
		go pruneHistory(ctx, historyRepo, retention, log)
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred closes run in reverse: API, sinks, bridge, InfluxDB, MQTT, database.
	log.Info("NVX fleet supervisor stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses NVXFLEET_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("NVXFLEET_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when InfluxDB is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// cliOptions holds the command-line flags.
type cliOptions struct {
	tokenRole    string
	tokenSubject string
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("nvxfleet", flag.ContinueOnError)
	fs.StringVar(&opts.tokenRole, "mint-token", "",
		"print an API access token for `role` (operator, programmer, administrator) and exit")
	fs.StringVar(&opts.tokenSubject, "token-subject", "cli", "subject recorded in a minted token")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if fs.NArg() > 0 {
		return cliOptions{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// mintToken prints a signed access token using the configured secret.
func mintToken(configPath string, opts cliOptions, w io.Writer) error {
	role, err := auth.ParseRole(opts.tokenRole)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Security.JWT.Secret == "" {
		return errors.New("security.jwt.secret is not set; the API is not gated")
	}

	token, err := auth.GenerateAccessToken(opts.tokenSubject, role, cfg.Security.JWT.Secret, cfg.Security.JWT.TokenTTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
