package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/drift-labs/drift-common/database"
	"github.com/drift-labs/drift-common/environment"
	"github.com/drift-labs/drift-common/geoblock"
	"github.com/drift-labs/drift-common/metrics"
	"github.com/drift-labs/drift-common/server"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev" // is set during build process

	// defaults
	defaultDebug             = os.Getenv("DEBUG") == "1"
	defaultLogJSON           = os.Getenv("LOG_JSON") == "1"
	defaultListenAddress     = "127.0.0.1:9000"
	defaultMetricsAddress    = "127.0.0.1:9090"
	defaultRedisUrl          = "localhost:6379"
	defaultServiceName       = getEnvAsStrOrDefault("SERVICE_NAME", "drift-geoblock")
	defaultShutdownDrainSecs = 0

	// cli flags
	versionPtr          = flag.Bool("version", false, "just print the program version")
	listenAddress       = flag.String("listen", getEnvAsStrOrDefault("LISTEN_ADDR", defaultListenAddress), "Listen address")
	metricsAddress      = flag.String("metrics-addr", getEnvAsStrOrDefault("METRICS_ADDR", defaultMetricsAddress), "Listen address for /metrics")
	geolocationUrl      = flag.String("geolocation", getEnvAsStrOrDefault("GEOLOCATION_URL", geoblock.DefaultGeolocationUrl), "URL of the geolocation service")
	ignoreGeoblock      = flag.Bool("ignore-geoblock", getEnvAsBoolOrDefault("IGNORE_GEOBLOCK", false), "never geoblock a session")
	onlyGeoblockMainnet = flag.Bool("only-geoblock-mainnet", getEnvAsBoolOrDefault("ONLY_GEOBLOCK_MAINNET", false), "geoblock only sessions on mainnet")
	environmentsFile    = flag.String("environments", os.Getenv("ENVIRONMENTS_FILE"), "YAML file replacing the built-in environment table")
	redisUrl            = flag.String("redis", getEnvAsStrOrDefault("REDIS_URL", defaultRedisUrl), "URL for Redis (use 'dev' to use integrated in-memory redis)")
	psqlDsn             = flag.String("psql", os.Getenv("POSTGRES_DSN"), "Postgres DSN")
	drainSeconds        = flag.Int("drain-seconds", getEnvAsIntOrDefault("DRAIN_SECONDS", defaultShutdownDrainSecs), "seconds to keep serving after a shutdown signal")
	debugPtr            = flag.Bool("debug", defaultDebug, "print debug output")
	logJSONPtr          = flag.Bool("log-json", defaultLogJSON, "log in JSON")
	serviceName         = flag.String("serviceName", defaultServiceName, "name of the service which will be used in the logs")
)

func main() {
	flag.Parse()

	logLevel := log.LevelInfo
	if *debugPtr {
		logLevel = log.LevelDebug
	}
	if *logJSONPtr {
		log.SetDefault(log.NewLogger(log.JSONHandlerWithLevel(os.Stderr, logLevel)))
	} else {
		log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, logLevel, true)))
	}
	logger := log.New("service", *serviceName)

	// Perhaps print only the version
	if *versionPtr {
		logger.Info("drift-geoblock", "version", version)
		return
	}

	logger.Info("Init drift-geoblock", "version", version)

	environments, err := environment.ReadConstantsFromFile(*environmentsFile)
	if err != nil {
		logger.Crit("Environment table error", "error", err)
	}

	// Setup database
	var db database.Store
	if *psqlDsn == "" {
		db = database.NewMockStore()
	} else {
		db = database.NewPostgresStore(*psqlDsn)
	}

	s, err := server.NewGeoblockServer(server.Configuration{
		DB:                  db,
		Environments:        environments,
		GeolocationUrl:      *geolocationUrl,
		IgnoreGeoblock:      *ignoreGeoblock,
		OnlyGeoblockMainnet: *onlyGeoblockMainnet,
		ListenAddress:       *listenAddress,
		Logger:              logger,
		RedisUrl:            *redisUrl,
		Version:             version,
		ShutdownDrainTime:   time.Duration(*drainSeconds) * time.Second,
	})
	if err != nil {
		logger.Crit("Server init error", "error", err)
	}

	metrics.InitGeoblockCheckMetric(geoblock.StatusUnknown.String(), geoblock.StatusNotBlocked.String(), geoblock.StatusBlocked.String())
	metricsServer := metrics.DefaultServer(*metricsAddress)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.Start)
	g.Go(func() error {
		logger.Info("Starting metrics server", "listenAddress", *metricsAddress)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(*drainSeconds+10)*time.Second)
		defer cancel()
		metricsServer.Shutdown(shutdownCtx)
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Crit("Server error", "error", err)
	}
}

func getEnvAsStrOrDefault(key string, defaultValue string) string {
	ret := os.Getenv(key)
	if ret == "" {
		ret = defaultValue
	}
	return ret
}

func getEnvAsIntOrDefault(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
