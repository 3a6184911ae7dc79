package database

import (
	"time"

	"github.com/google/uuid"
)

// GeoblockCheckEntry to store each geoblock evaluation
type GeoblockCheckEntry struct {
	Id              uuid.UUID `db:"id"`
	CheckedAt       time.Time `db:"checked_at"`
	InsertedAt      time.Time `db:"inserted_at"`
	SessionId       string    `db:"session_id"`
	Network         string    `db:"network"`
	IsOverridden    bool      `db:"is_overridden"`
	CountryCode     string    `db:"country_code"`
	Status          string    `db:"status"`
	WalletConnected bool      `db:"wallet_connected"`
	Disconnect      bool      `db:"disconnect"`
	Error           string    `db:"error"`
}
