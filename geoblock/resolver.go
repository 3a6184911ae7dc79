package geoblock

import (
	"context"
	"strings"

	"github.com/drift-labs/drift-common/adapters/webfile"
	"github.com/drift-labs/drift-common/metrics"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

const DefaultGeolocationUrl = "https://geolocation.drift-labs.workers.dev/"

type Status int

const (
	StatusUnknown Status = iota
	StatusNotBlocked
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusNotBlocked:
		return "not-blocked"
	case StatusBlocked:
		return "blocked"
	}
	return "unknown"
}

// Bool maps the status to the blocked flag, nil while unknown.
func (s Status) Bool() *bool {
	var b bool
	switch s {
	case StatusBlocked:
		b = true
	case StatusNotBlocked:
		b = false
	default:
		return nil
	}
	return &b
}

type Resolution struct {
	Status      Status
	CountryCode string
	// Overridden is set when no geolocation request was made
	Overridden bool
}

type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type CountryResolver interface {
	Resolve(ctx context.Context) (Resolution, error)
}

type Resolver struct {
	fetcher        Fetcher
	ignoreGeoblock bool
	logger         log.Logger
}

func NewResolver(fetcher Fetcher, ignoreGeoblock bool, logger log.Logger) *Resolver {
	if logger == nil {
		logger = log.New()
	}
	return &Resolver{
		fetcher:        fetcher,
		ignoreGeoblock: ignoreGeoblock,
		logger:         logger,
	}
}

// Resolve makes exactly one geolocation request unless the geoblock is ignored. A non-2xx answer
// resolves to StatusUnknown without an error; transport failures are returned.
func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	if r.ignoreGeoblock {
		return Resolution{Status: StatusNotBlocked, Overridden: true}, nil
	}

	bts, err := r.fetcher.Fetch(ctx)
	if errors.Is(err, webfile.ErrRequest) {
		metrics.IncGeolocationRequestErr()
		r.logger.Warn("[Resolve] geolocation request not ok", "error", err)
		return Resolution{Status: StatusUnknown}, nil
	} else if err != nil {
		metrics.IncGeolocationNetworkErr()
		return Resolution{Status: StatusUnknown}, errors.Wrap(err, "geolocation request")
	}

	code := strings.TrimSpace(string(bts))
	res := Resolution{Status: StatusNotBlocked, CountryCode: code}
	if IsBlacklistedCountry(code) {
		res.Status = StatusBlocked
	}
	r.logger.Debug("[Resolve] country resolved", "country", code, "status", res.Status)
	return res, nil
}
