package server

import (
	"time"

	"github.com/drift-labs/drift-common/database"
	"github.com/drift-labs/drift-common/environment"
	"github.com/ethereum/go-ethereum/log"
)

type Configuration struct {
	DB                  database.Store
	Environments        *environment.Constants
	GeolocationUrl      string
	IgnoreGeoblock      bool
	OnlyGeoblockMainnet bool
	ListenAddress       string
	Logger              log.Logger
	RedisUrl            string
	Version             string
	ShutdownDrainTime   time.Duration
}
