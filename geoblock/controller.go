package geoblock

import (
	"context"
	"sync"

	"github.com/drift-labs/drift-common/metrics"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

// ErrSuperseded is returned by Evaluate when newer inputs arrived while the geolocation request
// was in flight. The result of the older evaluation is discarded.
var ErrSuperseded = errors.New("geoblock evaluation superseded")

// Wallet is the externally owned wallet connection.
type Wallet interface {
	Connected() bool
	Disconnect(ctx context.Context) error
}

type Inputs struct {
	OnlyGeoblockMainnet bool
	IgnoreGeoblock      bool
	DevSwitchOn         bool
	IsMainnet           bool
}

// Overridden reports whether the inputs force the session to not-blocked without a lookup.
func (in Inputs) Overridden() bool {
	return (in.OnlyGeoblockMainnet && !in.IsMainnet) || in.IgnoreGeoblock || in.DevSwitchOn
}

type ControllerConfig struct {
	Resolver CountryResolver
	Store    Store  // defaults to an in-memory store
	Wallet   Wallet // optional
	// OnBlocked is called right before the wallet is asked to disconnect
	OnBlocked func()
	Logger    log.Logger
}

type Controller struct {
	resolver  CountryResolver
	store     Store
	wallet    Wallet
	onBlocked func()
	logger    log.Logger

	mu         sync.Mutex // guards the fields below
	inputs     Inputs
	hasInputs  bool
	generation uint64
	cancel     context.CancelFunc

	// keeps prev/next of concurrent dispatches ordered for NeedsDisconnect
	dispatchMu sync.Mutex
}

func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Resolver == nil {
		return nil, errors.New("geoblock controller needs a resolver")
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New()
	}
	return &Controller{
		resolver:  cfg.Resolver,
		store:     cfg.Store,
		wallet:    cfg.Wallet,
		onBlocked: cfg.OnBlocked,
		logger:    cfg.Logger,
	}, nil
}

// SetInputs records the override flags and network selection and re-evaluates when they changed.
// It reports whether an evaluation ran.
func (c *Controller) SetInputs(ctx context.Context, in Inputs) (Resolution, bool, error) {
	c.mu.Lock()
	if c.hasInputs && c.inputs == in {
		c.mu.Unlock()
		return Resolution{}, false, nil
	}
	c.inputs = in
	c.hasInputs = true
	c.mu.Unlock()

	res, err := c.Evaluate(ctx)
	return res, true, err
}

func (c *Controller) Inputs() Inputs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputs
}

// Evaluate runs the geoblock check for the current inputs. Any evaluation still waiting on the
// geolocation request is cancelled and its result dropped.
func (c *Controller) Evaluate(ctx context.Context) (Resolution, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	inputs := c.inputs

	if inputs.Overridden() {
		c.mu.Unlock()
		metrics.IncGeoblockOverridden()
		c.logger.Debug("[Evaluate] geoblock overridden", "inputs", inputs)
		return Resolution{Status: StatusNotBlocked, Overridden: true}, c.dispatch(ctx, OverrideEvent(), gen)
	}

	resolveCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	res, err := c.resolver.Resolve(resolveCtx)

	c.mu.Lock()
	stale := gen != c.generation
	if !stale {
		c.cancel = nil
	}
	c.mu.Unlock()

	if stale {
		metrics.IncGeoblockStaleResult()
		c.logger.Debug("[Evaluate] dropping superseded result", "status", res.Status)
		return res, ErrSuperseded
	}
	if err != nil {
		return res, err
	}

	metrics.ReportGeoblockCheck(res.Status.String())
	ev := ResolvedEvent(res.Status)
	if res.Overridden {
		ev = OverrideEvent()
	}
	err = c.dispatch(ctx, ev, gen)
	return res, err
}

// WalletConnectionChanged re-reads the wallet connection and disconnects it if the session is blocked.
func (c *Controller) WalletConnectionChanged(ctx context.Context) error {
	if c.wallet == nil {
		return nil
	}
	return c.dispatch(ctx, WalletEvent(c.wallet.Connected()), 0)
}

func (c *Controller) State(ctx context.Context) (State, error) {
	return c.store.Load(ctx)
}

// dispatch applies ev to the stored state. A non-zero gen drops the event when a newer evaluation
// started before the store update ran.
func (c *Controller) dispatch(ctx context.Context, ev Event, gen uint64) error {
	c.dispatchMu.Lock()
	prev, next, err := c.store.Update(ctx, func(s State) (State, error) {
		if c.superseded(gen) {
			return s, ErrSuperseded
		}
		next := Reduce(s, ev)
		if c.wallet != nil && ev.Kind != EventWalletConnected && ev.Kind != EventWalletDisconnected {
			next = Reduce(next, WalletEvent(c.wallet.Connected()))
		}
		return next, nil
	})
	c.dispatchMu.Unlock()

	if errors.Is(err, ErrSuperseded) {
		metrics.IncGeoblockStaleResult()
		c.logger.Debug("[dispatch] dropping superseded event", "kind", ev.Kind)
		return ErrSuperseded
	} else if err != nil {
		return errors.Wrap(err, "update geoblock state")
	}
	if next != prev {
		c.logger.Info("[dispatch] geoblock state changed", "blocked", next.Blocked, "walletConnected", next.WalletConnected)
	}

	if NeedsDisconnect(prev, next) {
		return c.disconnect(ctx)
	}
	return nil
}

func (c *Controller) superseded(gen uint64) bool {
	if gen == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen != c.generation
}

func (c *Controller) disconnect(ctx context.Context) error {
	if c.onBlocked != nil {
		c.onBlocked()
	}
	if c.wallet == nil {
		return nil
	}
	metrics.IncGeoblockDisconnect()
	c.logger.Info("[disconnect] geoblocked, disconnecting wallet")
	if err := c.wallet.Disconnect(ctx); err != nil {
		return errors.Wrap(err, "wallet disconnect")
	}
	return c.dispatch(ctx, WalletEvent(c.wallet.Connected()), 0)
}
