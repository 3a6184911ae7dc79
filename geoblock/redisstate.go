package geoblock

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/drift-labs/drift-common/metrics"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

var RedisPrefix = "drift-common:"
var RedisPrefixGeoblockSession = RedisPrefix + "geoblock-session:"
var RedisExpiryGeoblockSession = time.Duration(24 * time.Hour) // 1 day, the length of a session

var RedisMaxUpdateRetries = 10

func RedisKeyGeoblockSession(sessionId string) string {
	return RedisPrefixGeoblockSession + strings.ToLower(sessionId)
}

type RedisState struct {
	RedisClient *redis.Client
}

func NewRedisState(redisUrl string) (*RedisState, error) {
	// Setup redis client and check connection
	redisClient := redis.NewClient(&redis.Options{Addr: redisUrl})

	// Try to get a key to see if there's an error with the connection
	if err := redisClient.Get(context.Background(), "somekey").Err(); err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, "redis init error")
	}

	return &RedisState{
		RedisClient: redisClient,
	}, nil
}

func (s *RedisState) SetSessionState(ctx context.Context, sessionId string, state State) error {
	val, err := json.Marshal(state)
	if err != nil {
		return err
	}
	key := RedisKeyGeoblockSession(sessionId)
	err = s.RedisClient.Set(ctx, key, val, RedisExpiryGeoblockSession).Err()
	if err != nil {
		metrics.IncRedisErr()
	}
	return err
}

func (s *RedisState) GetSessionState(ctx context.Context, sessionId string) (state State, found bool, err error) {
	key := RedisKeyGeoblockSession(sessionId)
	return decodeSessionState(s.RedisClient.Get(ctx, key).Bytes())
}

func decodeSessionState(val []byte, err error) (state State, found bool, _ error) {
	if err == redis.Nil {
		return State{}, false, nil // just not found
	} else if err != nil {
		metrics.IncRedisErr()
		return State{}, true, err // found but error
	}

	if err = json.Unmarshal(val, &state); err != nil {
		return State{}, true, errors.Wrap(err, "decode session state")
	}
	return state, true, nil
}

// SessionStore binds the redis state to one session.
func (s *RedisState) SessionStore(sessionId string) Store {
	return &redisSessionStore{state: s, sessionId: sessionId}
}

type redisSessionStore struct {
	state     *RedisState
	sessionId string
}

func (r *redisSessionStore) Load(ctx context.Context) (State, error) {
	state, _, err := r.state.GetSessionState(ctx, r.sessionId)
	return state, err
}

// Update runs fn inside a WATCH on the session key, so a concurrent request writing the same
// session makes the transaction fail and fn is applied again to the newer state.
func (r *redisSessionStore) Update(ctx context.Context, fn func(State) (State, error)) (prev, next State, err error) {
	key := RedisKeyGeoblockSession(r.sessionId)
	txf := func(tx *redis.Tx) error {
		var err error
		prev, _, err = decodeSessionState(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		next, err = fn(prev)
		if err != nil || next == prev {
			return err
		}
		val, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, RedisExpiryGeoblockSession)
			return nil
		})
		return err
	}

	for i := 0; i < RedisMaxUpdateRetries; i++ {
		err = r.state.RedisClient.Watch(ctx, txf, key)
		if err != redis.TxFailedErr {
			return prev, next, err
		}
	}
	metrics.IncRedisErr()
	return prev, next, errors.Wrap(err, "session state update retries exhausted")
}
