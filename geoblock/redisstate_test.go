package geoblock

import (
	"context"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/drift-labs/drift-common/adapters/webfile"
	"github.com/stretchr/testify/require"
)

var redisServer *miniredis.Miniredis
var redisState *RedisState

func resetRedis() {
	var err error
	if redisServer != nil {
		redisServer.Close()
	}

	redisServer, err = miniredis.Run()
	if err != nil {
		panic(err)
	}

	redisState, err = NewRedisState(redisServer.Addr())
	if err != nil {
		panic(err)
	}
}

func TestRedisStateSetup(t *testing.T) {
	var err error
	_, err = NewRedisState("localhost:18279")
	require.NotNil(t, err, err)
}

func TestSessionState(t *testing.T) {
	resetRedis()
	ctx := context.Background()

	// Get before set: should return not found
	state, found, err := redisState.GetSessionState(ctx, "Session1")
	require.Nil(t, err, err)
	require.False(t, found)
	require.Equal(t, State{}, state)

	want := State{Blocked: StatusBlocked, WalletConnected: true}
	err = redisState.SetSessionState(ctx, "Session1", want)
	require.Nil(t, err, err)

	// Session ids are case insensitive
	state, found, err = redisState.GetSessionState(ctx, "session1")
	require.Nil(t, err, err)
	require.True(t, found)
	require.Equal(t, want, state)

	require.True(t, redisServer.Exists(RedisKeyGeoblockSession("session1")))
	require.Equal(t, RedisExpiryGeoblockSession, redisServer.TTL(RedisKeyGeoblockSession("session1")))

	// After resetting redis, we shouldn't be able to find the key
	resetRedis()
	_, found, err = redisState.GetSessionState(ctx, "session1")
	require.Nil(t, err, err)
	require.False(t, found)
}

func TestSessionStateCorrupt(t *testing.T) {
	resetRedis()
	require.NoError(t, redisServer.Set(RedisKeyGeoblockSession("broken"), "not-json"))

	_, found, err := redisState.GetSessionState(context.Background(), "broken")
	require.True(t, found)
	require.Error(t, err)
}

func TestControllerWithRedisSessionStore(t *testing.T) {
	resetRedis()
	srv, calls := geolocationBackend(t, http.StatusOK, "SY")
	resolver := NewResolver(webfile.NewFetcher(srv.URL), false, nil)

	c, err := NewController(ControllerConfig{Resolver: resolver, Store: redisState.SessionStore("abc")})
	require.NoError(t, err)
	_, _, err = c.SetInputs(context.Background(), Inputs{IsMainnet: true})
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	// a new controller for the same session sees the stored state
	other, err := NewController(ControllerConfig{Resolver: resolver, Store: redisState.SessionStore("abc")})
	require.NoError(t, err)
	state, err := other.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusBlocked, state.Blocked)

	// a new lookup keeps the session blocked, an override unblocks it
	_, _, err = other.SetInputs(context.Background(), Inputs{IsMainnet: false})
	require.NoError(t, err)
	state, err = other.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusBlocked, state.Blocked)

	_, _, err = other.SetInputs(context.Background(), Inputs{IgnoreGeoblock: true})
	require.NoError(t, err)
	state, err = other.State(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusNotBlocked, state.Blocked)
}

func TestRedisSessionStoreUpdateRetriesOnConflict(t *testing.T) {
	resetRedis()
	first := redisState.SessionStore("shared")
	second := redisState.SessionStore("shared")

	read := make(chan struct{})
	written := make(chan struct{})
	attempts := 0
	errCh := make(chan error, 1)
	go func() {
		_, _, err := first.Update(context.Background(), func(s State) (State, error) {
			attempts++
			if attempts == 1 {
				close(read)
				<-written
			}
			s.Blocked = StatusBlocked
			return s, nil
		})
		errCh <- err
	}()

	<-read
	_, next, err := second.Update(context.Background(), func(s State) (State, error) {
		s.WalletConnected = true
		return s, nil
	})
	require.NoError(t, err)
	require.Equal(t, State{WalletConnected: true}, next)
	close(written)

	require.NoError(t, <-errCh)
	require.Equal(t, 2, attempts)

	state, err := first.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, State{Blocked: StatusBlocked, WalletConnected: true}, state)
	require.True(t, redisServer.Exists(RedisKeyGeoblockSession("shared")))
}
