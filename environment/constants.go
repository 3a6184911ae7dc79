// RPC endpoints and service URLs for each environment.
package environment

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/pkg/errors"
)

var ErrUnknownEnv = errors.New("unknown environment")

type Env string

const (
	Dev     Env = "dev"
	Mainnet Env = "mainnet"
	Staging Env = "staging"
)

func ParseEnv(s string) (Env, error) {
	switch Env(s) {
	case Dev, Mainnet, Staging:
		return Env(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEnv, s)
}

type RpcEndpoint struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	// AllowAdditionalConnection is set when a second concurrent connection to the endpoint is permitted
	AllowAdditionalConnection bool `yaml:"allowAdditionalConnection" json:"allowAdditionalConnection"`
}

type Constants struct {
	Rpcs              map[Env][]RpcEndpoint `yaml:"rpcs"`
	HistoryServerUrl  map[Env]string        `yaml:"historyServerUrl"`
	DlobServerHttpUrl map[Env]string        `yaml:"dlobServerHttpUrl"`
	DlobServerWsUrl   map[Env]string        `yaml:"dlobServerWsUrl"`
}

// EnvironmentConstants is the built-in table. Treat it as read-only.
var EnvironmentConstants = Constants{
	Rpcs: map[Env][]RpcEndpoint{
		Dev: {
			{
				Label:                     "Helius",
				Value:                     "https://rpc-devnet.helius.xyz/?api-key=ff40c844-e15b-49d0-9d62-8534705aa48b",
				AllowAdditionalConnection: true,
			},
			{
				Label:                     "RPC Pool",
				Value:                     "https://drift-drift-a827.devnet.rpcpool.com",
				AllowAdditionalConnection: false,
			},
		},
		Mainnet: {
			{
				Label:                     "Triton RPC Pool 1",
				Value:                     "https://drift-drift-951a.mainnet.rpcpool.com",
				AllowAdditionalConnection: true,
			},
			{
				Label:                     "Triton RPC Pool 2",
				Value:                     "https://drift-cranking.rpcpool.com/",
				AllowAdditionalConnection: false,
			},
			{
				Label:                     "Helius 1",
				Value:                     "https://rpc-proxy.drift-labs.workers.dev/",
				AllowAdditionalConnection: true,
			},
			{
				Label:                     "Helius 2",
				Value:                     "https://cold-hanni-fast-mainnet.helius-rpc.com/",
				AllowAdditionalConnection: true,
			},
		},
	},
	HistoryServerUrl: map[Env]string{
		Dev:     "https://master.api.drift.trade",
		Mainnet: "https://mainnet-beta.api.drift.trade",
		Staging: "https://staging.api.drift.trade",
	},
	DlobServerHttpUrl: map[Env]string{
		Dev:     "https://master.dlob.drift.trade",
		Mainnet: "https://mainnet-beta.api.drift.trade/dlob",
		Staging: "https://staging.dlob.drift.trade",
	},
	DlobServerWsUrl: map[Env]string{
		Dev:     "wss://master.dlob.drift.trade/ws",
		Mainnet: "wss://dlob.drift.trade/ws",
		Staging: "wss://staging.dlob.drift.trade/ws",
	},
}

// RpcEndpoints returns a copy of the ordered endpoint list for env.
func (c *Constants) RpcEndpoints(env Env) ([]RpcEndpoint, bool) {
	rpcs, ok := c.Rpcs[env]
	if !ok {
		return nil, false
	}
	return slices.Clone(rpcs), true
}

func (c *Constants) HistoryServerURL(env Env) (string, bool) {
	u, ok := c.HistoryServerUrl[env]
	return u, ok
}

func (c *Constants) DlobServerHTTPURL(env Env) (string, bool) {
	u, ok := c.DlobServerHttpUrl[env]
	return u, ok
}

func (c *Constants) DlobServerWsURL(env Env) (string, bool) {
	u, ok := c.DlobServerWsUrl[env]
	return u, ok
}

// Validate checks that every configured value is an absolute URL.
func (c *Constants) Validate() error {
	for env, rpcs := range c.Rpcs {
		for _, rpc := range rpcs {
			if err := checkAbsoluteURL(rpc.Value); err != nil {
				return errors.Wrapf(err, "rpcs.%s %q", env, rpc.Label)
			}
		}
	}
	tables := map[string]map[Env]string{
		"historyServerUrl":  c.HistoryServerUrl,
		"dlobServerHttpUrl": c.DlobServerHttpUrl,
		"dlobServerWsUrl":   c.DlobServerWsUrl,
	}
	for name, table := range tables {
		for env, value := range table {
			if err := checkAbsoluteURL(value); err != nil {
				return errors.Wrapf(err, "%s.%s", name, env)
			}
		}
	}
	return nil
}

func checkAbsoluteURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("not an absolute url: %q", value)
	}
	return nil
}
