package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/drift-labs/drift-common/adapters/webfile"
	"github.com/drift-labs/drift-common/database"
	"github.com/drift-labs/drift-common/environment"
	"github.com/drift-labs/drift-common/geoblock"
	"github.com/drift-labs/drift-common/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

var Now = time.Now // used to mock time in tests

type GeoblockServer struct {
	server            *http.Server
	logger            log.Logger
	version           string
	startTime         time.Time
	shutdownDrainTime time.Duration

	db                  database.Store
	environments        *environment.Constants
	redisState          *geoblock.RedisState
	geolocation         *webfile.Fetcher
	ignoreGeoblock      bool
	onlyGeoblockMainnet bool
}

func NewGeoblockServer(cfg Configuration) (*GeoblockServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New()
	}

	if cfg.RedisUrl == "dev" {
		logger.Info("Using integrated in-memory Redis instance")
		redisServer, err := miniredis.Run()
		if err != nil {
			return nil, err
		}
		cfg.RedisUrl = redisServer.Addr()
	}

	// Setup redis connection
	logger.Info("Connecting to redis...", "redisUrl", cfg.RedisUrl)
	redisState, err := geoblock.NewRedisState(cfg.RedisUrl)
	if err != nil {
		return nil, errors.Wrap(err, "Redis init error")
	}

	if cfg.DB == nil {
		cfg.DB = database.NewMockStore()
	}
	if cfg.Environments == nil {
		cfg.Environments = &environment.EnvironmentConstants
	}
	if cfg.GeolocationUrl == "" {
		cfg.GeolocationUrl = geoblock.DefaultGeolocationUrl
	}
	if cfg.IgnoreGeoblock {
		logger.Warn("geoblock is ignored, every session resolves to not blocked")
	}

	s := &GeoblockServer{
		logger:              logger,
		version:             cfg.Version,
		startTime:           Now(),
		shutdownDrainTime:   cfg.ShutdownDrainTime,
		db:                  cfg.DB,
		environments:        cfg.Environments,
		redisState:          redisState,
		geolocation:         webfile.NewFetcher(cfg.GeolocationUrl),
		ignoreGeoblock:      cfg.IgnoreGeoblock,
		onlyGeoblockMainnet: cfg.OnlyGeoblockMainnet,
	}
	s.server = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s, nil
}

func (s *GeoblockServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealthRequest)
	mux.HandleFunc("GET /environments", s.handleEnvironmentsRequest)
	mux.HandleFunc("GET /environments/{env}", s.handleEnvironmentRequest)
	mux.HandleFunc("GET /environments/{env}/rpcs", s.handleRpcsRequest)
	mux.HandleFunc("GET /geoblock", s.handleGeoblockRequest)
	mux.HandleFunc("GET /geoblock/countries", s.handleCountriesRequest)
	return MetricsMiddleware(CorsMiddleware(mux))
}

// Start serves until the server is shut down.
func (s *GeoblockServer) Start() error {
	s.logger.Info("Starting geoblock server", "version", s.version, "listenAddress", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "Failed to start geoblock server")
	}
	return nil
}

func (s *GeoblockServer) Shutdown(ctx context.Context) error {
	if s.shutdownDrainTime > 0 {
		s.logger.Info("draining before shutdown", "drainTime", s.shutdownDrainTime)
		select {
		case <-time.After(s.shutdownDrainTime):
		case <-ctx.Done():
		}
	}
	return s.server.Shutdown(ctx)
}

func (s *GeoblockServer) handleHealthRequest(respw http.ResponseWriter, req *http.Request) {
	res := types.HealthResponse{
		Now:       Now(),
		StartTime: s.startTime,
		Version:   s.version,
	}
	s.writeJson(respw, http.StatusOK, res)
}

func (s *GeoblockServer) writeJson(respw http.ResponseWriter, status int, res interface{}) {
	jsonResp, err := json.Marshal(res)
	if err != nil {
		s.logger.Error("json marshal error", "error", err)
		respw.WriteHeader(http.StatusInternalServerError)
		return
	}

	respw.Header().Set("Content-Type", "application/json")
	respw.WriteHeader(status)
	respw.Write(jsonResp)
}

func (s *GeoblockServer) writeError(respw http.ResponseWriter, status int, msg string) {
	s.writeJson(respw, status, types.ErrorResponse{Error: msg})
}
