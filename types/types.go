package types

import (
	"time"

	"github.com/drift-labs/drift-common/environment"
)

type HealthResponse struct {
	Now       time.Time `json:"time"`
	StartTime time.Time `json:"startTime"`
	Version   string    `json:"version"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type EnvironmentResponse struct {
	Env               environment.Env           `json:"env"`
	Rpcs              []environment.RpcEndpoint `json:"rpcs"`
	HistoryServerUrl  string                    `json:"historyServerUrl,omitempty"`
	DlobServerHttpUrl string                    `json:"dlobServerHttpUrl,omitempty"`
	DlobServerWsUrl   string                    `json:"dlobServerWsUrl,omitempty"`
}

// GeoblockResponse answers a geoblock check. Blocked is null while the session is unresolved.
type GeoblockResponse struct {
	SessionId  string `json:"sessionId"`
	Blocked    *bool  `json:"blocked"`
	Disconnect bool   `json:"disconnect"`
	Overridden bool   `json:"overridden"`
}
