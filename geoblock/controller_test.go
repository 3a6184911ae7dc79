package geoblock

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/drift-labs/drift-common/adapters/webfile"
	"github.com/stretchr/testify/require"
)

type testWallet struct {
	mu          sync.Mutex
	connected   bool
	disconnects int
}

func (w *testWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *testWallet) Disconnect(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
	w.disconnects++
	return nil
}

func (w *testWallet) setConnected(connected bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = connected
}

func (w *testWallet) numDisconnects() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disconnects
}

// blockingResolver waits for release or cancellation before answering blocked
type blockingResolver struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingResolver) Resolve(ctx context.Context) (Resolution, error) {
	close(b.started)
	select {
	case <-b.release:
		return Resolution{Status: StatusBlocked, CountryCode: "US"}, nil
	case <-ctx.Done():
		return Resolution{Status: StatusUnknown}, ctx.Err()
	}
}

// gateStore holds the first update until gate is closed
type gateStore struct {
	Store
	once    sync.Once
	loading chan struct{}
	gate    chan struct{}
}

func (g *gateStore) Update(ctx context.Context, fn func(State) (State, error)) (State, State, error) {
	g.once.Do(func() {
		close(g.loading)
		<-g.gate
	})
	return g.Store.Update(ctx, fn)
}

func newTestController(t *testing.T, status int, body string, wallet Wallet, onBlocked func()) (*Controller, func() int32) {
	t.Helper()
	srv, calls := geolocationBackend(t, status, body)
	cfg := ControllerConfig{
		Resolver:  NewResolver(webfile.NewFetcher(srv.URL), false, nil),
		OnBlocked: onBlocked,
	}
	if wallet != nil {
		cfg.Wallet = wallet
	}
	c, err := NewController(cfg)
	require.NoError(t, err)
	return c, calls.Load
}

func TestControllerBlockedCountry(t *testing.T) {
	c, calls := newTestController(t, http.StatusOK, "US", nil, nil)

	res, ran, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, StatusBlocked, res.Status)
	require.Equal(t, "US", res.CountryCode)
	require.Equal(t, int32(1), calls())

	state, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusBlocked, state.Blocked)
}

func TestControllerAllowedCountryLeavesStateUnset(t *testing.T) {
	c, _ := newTestController(t, http.StatusOK, "FR", nil, nil)

	res, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, StatusNotBlocked, res.Status)

	state, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, state.Blocked)
}

func TestControllerNon2xxLeavesStateUnresolved(t *testing.T) {
	c, _ := newTestController(t, http.StatusServiceUnavailable, "", nil, nil)

	res, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, res.Status)

	state, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusUnknown, state.Blocked)
	require.Nil(t, state.Blocked.Bool())
}

func TestControllerOverrides(t *testing.T) {
	tests := map[string]Inputs{
		"ignore geoblock":               {IgnoreGeoblock: true, IsMainnet: true},
		"dev switch":                    {DevSwitchOn: true, IsMainnet: true},
		"only mainnet while on devnet":  {OnlyGeoblockMainnet: true, IsMainnet: false},
		"ignore wins over mainnet-only": {OnlyGeoblockMainnet: true, IsMainnet: true, IgnoreGeoblock: true},
	}
	for testName, inputs := range tests {
		t.Run(testName, func(t *testing.T) {
			c, calls := newTestController(t, http.StatusOK, "US", nil, nil)

			res, _, err := c.SetInputs(context.Background(), inputs)
			require.NoError(t, err)
			require.True(t, res.Overridden)
			require.Equal(t, StatusNotBlocked, res.Status)
			require.Equal(t, int32(0), calls())

			state, err := c.State(context.Background())
			require.NoError(t, err)
			require.Equal(t, StatusNotBlocked, state.Blocked)
		})
	}
}

func TestControllerOnlyMainnetStillChecksMainnet(t *testing.T) {
	c, calls := newTestController(t, http.StatusOK, "US", nil, nil)

	res, _, err := c.SetInputs(context.Background(), Inputs{OnlyGeoblockMainnet: true, IsMainnet: true})
	require.NoError(t, err)
	require.False(t, res.Overridden)
	require.Equal(t, StatusBlocked, res.Status)
	require.Equal(t, int32(1), calls())
}

func TestControllerSetInputsUnchanged(t *testing.T) {
	c, calls := newTestController(t, http.StatusOK, "FR", nil, nil)
	inputs := Inputs{IsMainnet: true}

	_, ran, err := c.SetInputs(context.Background(), inputs)
	require.NoError(t, err)
	require.True(t, ran)

	_, ran, err = c.SetInputs(context.Background(), inputs)
	require.NoError(t, err)
	require.False(t, ran)
	require.Equal(t, int32(1), calls())

	_, ran, err = c.SetInputs(context.Background(), Inputs{IsMainnet: false})
	require.NoError(t, err)
	require.True(t, ran)
	require.Equal(t, int32(2), calls())
	require.Equal(t, Inputs{IsMainnet: false}, c.Inputs())
}

func TestControllerDisconnectsOnce(t *testing.T) {
	wallet := &testWallet{connected: true}
	callbacks := 0
	c, _ := newTestController(t, http.StatusOK, "US", wallet, func() { callbacks++ })

	_, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, 1, wallet.numDisconnects())
	require.Equal(t, 1, callbacks)
	require.False(t, wallet.Connected())

	// re-evaluating while already blocked must not disconnect again
	_, err = c.Evaluate(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.WalletConnectionChanged(context.Background()))
	require.Equal(t, 1, wallet.numDisconnects())
	require.Equal(t, 1, callbacks)
}

func TestControllerDisconnectsOnReconnect(t *testing.T) {
	wallet := &testWallet{}
	callbacks := 0
	c, _ := newTestController(t, http.StatusOK, "CU", wallet, func() { callbacks++ })

	_, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, 0, wallet.numDisconnects())
	require.Equal(t, 0, callbacks)

	wallet.setConnected(true)
	require.NoError(t, c.WalletConnectionChanged(context.Background()))
	require.Equal(t, 1, wallet.numDisconnects())
	require.Equal(t, 1, callbacks)

	wallet.setConnected(true)
	require.NoError(t, c.WalletConnectionChanged(context.Background()))
	require.Equal(t, 2, wallet.numDisconnects())
	require.Equal(t, 2, callbacks)
}

func TestControllerNoDisconnectWhenAllowed(t *testing.T) {
	wallet := &testWallet{connected: true}
	c, _ := newTestController(t, http.StatusOK, "DE", wallet, nil)

	_, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, 0, wallet.numDisconnects())
	require.True(t, wallet.Connected())
}

func TestControllerSupersededEvaluation(t *testing.T) {
	resolver := &blockingResolver{started: make(chan struct{}), release: make(chan struct{})}
	wallet := &testWallet{connected: true}
	c, err := NewController(ControllerConfig{Resolver: resolver, Wallet: wallet})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
		errCh <- err
	}()
	<-resolver.started

	res, ran, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true, IgnoreGeoblock: true})
	require.NoError(t, err)
	require.True(t, ran)
	require.True(t, res.Overridden)

	require.True(t, errors.Is(<-errCh, ErrSuperseded))

	state, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusNotBlocked, state.Blocked)
	require.Equal(t, 0, wallet.numDisconnects())
}

func TestControllerSupersededWhileUpdatingState(t *testing.T) {
	store := &gateStore{Store: NewMemoryStore(), loading: make(chan struct{}), gate: make(chan struct{})}
	wallet := &testWallet{connected: true}
	srv, _ := geolocationBackend(t, http.StatusOK, "US")
	c, err := NewController(ControllerConfig{
		Resolver: NewResolver(webfile.NewFetcher(srv.URL), false, nil),
		Store:    store,
		Wallet:   wallet,
	})
	require.NoError(t, err)

	firstErr := make(chan error, 1)
	go func() {
		_, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
		firstErr <- err
	}()
	<-store.loading

	overrideErr := make(chan error, 1)
	go func() {
		_, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true, DevSwitchOn: true})
		overrideErr <- err
	}()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.generation == 2
	}, time.Second, 5*time.Millisecond)
	close(store.gate)

	require.ErrorIs(t, <-firstErr, ErrSuperseded)
	require.NoError(t, <-overrideErr)

	state, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, State{Blocked: StatusNotBlocked, WalletConnected: true}, state)
	require.Equal(t, 0, wallet.numDisconnects())
}

func TestControllerOverrideUnblocksSession(t *testing.T) {
	wallet := &testWallet{connected: true}
	c, calls := newTestController(t, http.StatusOK, "US", wallet, nil)

	_, _, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, 1, wallet.numDisconnects())

	wallet.setConnected(true)
	res, ran, err := c.SetInputs(context.Background(), Inputs{IsMainnet: true, IgnoreGeoblock: true})
	require.NoError(t, err)
	require.True(t, ran)
	require.True(t, res.Overridden)
	require.Equal(t, int32(1), calls())

	state, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, State{Blocked: StatusNotBlocked, WalletConnected: true}, state)
	require.Equal(t, 1, wallet.numDisconnects())
	require.True(t, wallet.Connected())

	// dropping the override looks the country up again
	_, _, err = c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, int32(2), calls())
	require.Equal(t, 2, wallet.numDisconnects())
}

func TestControllerTransportErrorPropagates(t *testing.T) {
	c, err := NewController(ControllerConfig{
		Resolver: NewResolver(webfile.NewFetcher("http://127.0.0.1:1"), false, nil),
	})
	require.NoError(t, err)

	_, _, err = c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.Error(t, err)

	state, err := c.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, State{}, state)
}

func TestNewControllerNeedsResolver(t *testing.T) {
	_, err := NewController(ControllerConfig{})
	require.Error(t, err)
}
