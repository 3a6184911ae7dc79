package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/drift-labs/drift-common/database"
	"github.com/drift-labs/drift-common/environment"
	"github.com/drift-labs/drift-common/geoblock"
	"github.com/drift-labs/drift-common/types"
	"github.com/drift-labs/drift-common/utils"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
)

// requestWallet stands in for the browser wallet: the client reports whether it is connected and
// the response tells it to disconnect.
type requestWallet struct {
	connected           bool
	disconnectRequested bool
}

func (w *requestWallet) Connected() bool {
	return w.connected
}

func (w *requestWallet) Disconnect(_ context.Context) error {
	w.connected = false
	w.disconnectRequested = true
	return nil
}

// handleGeoblockRequest runs the geoblock controller for one session.
//
// Query parameters: env (dev|mainnet|staging, default mainnet), dev (dev switch), connected
// (wallet connected), session (optional session id, defaults to a fingerprint of the client).
func (s *GeoblockServer) handleGeoblockRequest(respw http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	env := environment.Mainnet
	if v := q.Get("env"); v != "" {
		parsed, err := environment.ParseEnv(v)
		if err != nil {
			s.writeError(respw, http.StatusBadRequest, err.Error())
			return
		}
		env = parsed
	}
	devSwitchOn, err := parseBoolParam(q.Get("dev"))
	if err != nil {
		s.writeError(respw, http.StatusBadRequest, "invalid dev parameter")
		return
	}
	connected, err := parseBoolParam(q.Get("connected"))
	if err != nil {
		s.writeError(respw, http.StatusBadRequest, "invalid connected parameter")
		return
	}

	sessionId := q.Get("session")
	if sessionId == "" {
		fingerprint, err := FingerprintFromRequest(req, Now())
		if err != nil {
			s.writeError(respw, http.StatusBadRequest, err.Error())
			return
		}
		sessionId = fingerprint.SessionId()
	}

	uid := uuid.New()
	logger := s.logger.New("uid", uid, "session", sessionId)
	wallet := &requestWallet{connected: connected}
	ip := utils.GetIP(req)

	controller, err := geoblock.NewController(geoblock.ControllerConfig{
		Resolver: geoblock.NewResolver(s.geolocation.WithHeader("X-Forwarded-For", ip), s.ignoreGeoblock, logger),
		Store:    s.redisState.SessionStore(sessionId),
		Wallet:   wallet,
		Logger:   logger,
	})
	if err != nil {
		s.writeError(respw, http.StatusInternalServerError, err.Error())
		return
	}

	entry := &database.GeoblockCheckEntry{
		Id:              uid,
		CheckedAt:       Now().UTC(),
		SessionId:       sessionId,
		Network:         string(env),
		WalletConnected: connected,
	}
	defer s.recordCheck(logger, entry)

	inputs := geoblock.Inputs{
		OnlyGeoblockMainnet: s.onlyGeoblockMainnet,
		IgnoreGeoblock:      s.ignoreGeoblock,
		DevSwitchOn:         devSwitchOn,
		IsMainnet:           env == environment.Mainnet,
	}
	res, _, err := controller.SetInputs(req.Context(), inputs)
	entry.IsOverridden = res.Overridden
	entry.CountryCode = res.CountryCode
	entry.Status = res.Status.String()
	entry.Disconnect = wallet.disconnectRequested
	if err != nil {
		logger.Error("[handleGeoblockRequest] geoblock check failed", "error", err)
		entry.Error = err.Error()
		s.writeError(respw, http.StatusBadGateway, "geoblock check failed")
		return
	}

	state, err := controller.State(req.Context())
	if err != nil {
		logger.Error("[handleGeoblockRequest] loading state failed", "error", err)
		entry.Error = err.Error()
		s.writeError(respw, http.StatusInternalServerError, "geoblock state unavailable")
		return
	}

	s.writeJson(respw, http.StatusOK, types.GeoblockResponse{
		SessionId:  sessionId,
		Blocked:    state.Blocked.Bool(),
		Disconnect: wallet.disconnectRequested,
		Overridden: res.Overridden,
	})
}

func (s *GeoblockServer) handleCountriesRequest(respw http.ResponseWriter, req *http.Request) {
	s.writeJson(respw, http.StatusOK, geoblock.LocationBlacklist())
}

func (s *GeoblockServer) recordCheck(logger log.Logger, entry *database.GeoblockCheckEntry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := s.db.SaveGeoblockCheck(ctx, entry); err != nil {
			logger.Error("[recordCheck] SaveGeoblockCheck failed", "error", err)
		}
	}()
}

func parseBoolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
