// geocheck runs one geoblock check from this machine, or prints the endpoint table of an environment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/drift-labs/drift-common/adapters/webfile"
	"github.com/drift-labs/drift-common/environment"
	"github.com/drift-labs/drift-common/geoblock"
	"github.com/ethereum/go-ethereum/log"
)

var (
	envName             = flag.String("env", "mainnet", "environment: dev, mainnet or staging")
	geolocationUrl      = flag.String("geolocation", geoblock.DefaultGeolocationUrl, "URL of the geolocation service")
	ignoreGeoblock      = flag.Bool("ignore-geoblock", os.Getenv("IGNORE_GEOBLOCK") == "true", "never geoblock")
	onlyGeoblockMainnet = flag.Bool("only-geoblock-mainnet", os.Getenv("ONLY_GEOBLOCK_MAINNET") == "true", "geoblock only on mainnet")
	devSwitch           = flag.Bool("dev", false, "developer mode switch")
	printRpcs           = flag.Bool("rpcs", false, "print the rpc endpoints of -env and exit")
	debugPtr            = flag.Bool("debug", false, "print debug output")
)

func main() {
	flag.Parse()

	logLevel := log.LevelWarn
	if *debugPtr {
		logLevel = log.LevelDebug
	}
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, logLevel, true)))

	env, err := environment.ParseEnv(*envName)
	if err != nil {
		log.Crit("invalid environment", "error", err)
	}

	if *printRpcs {
		rpcs, ok := environment.EnvironmentConstants.RpcEndpoints(env)
		if !ok {
			log.Crit("no rpc endpoints configured", "env", env)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rpcs); err != nil {
			log.Crit("encode", "error", err)
		}
		return
	}

	resolver := geoblock.NewResolver(webfile.NewFetcher(*geolocationUrl), *ignoreGeoblock, log.Root())
	controller, err := geoblock.NewController(geoblock.ControllerConfig{
		Resolver: resolver,
		Logger:   log.Root(),
	})
	if err != nil {
		log.Crit("controller init", "error", err)
	}

	res, _, err := controller.SetInputs(context.Background(), geoblock.Inputs{
		OnlyGeoblockMainnet: *onlyGeoblockMainnet,
		IgnoreGeoblock:      *ignoreGeoblock,
		DevSwitchOn:         *devSwitch,
		IsMainnet:           env == environment.Mainnet,
	})
	if err != nil {
		log.Crit("geoblock check failed", "error", err)
	}

	state, err := controller.State(context.Background())
	if err != nil {
		log.Crit("geoblock state", "error", err)
	}
	fmt.Printf("env:        %s\n", env)
	fmt.Printf("country:    %s\n", res.CountryCode)
	fmt.Printf("overridden: %t\n", res.Overridden)
	fmt.Printf("resolved:   %s\n", res.Status)
	fmt.Printf("state:      %s\n", state.Blocked)
	if state.Blocked == geoblock.StatusBlocked {
		os.Exit(2)
	}
}
