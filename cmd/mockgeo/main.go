package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/drift-labs/drift-common/testutils"
	"github.com/ethereum/go-ethereum/log"
)

var (
	port    = flag.Int("port", 8091, "listen port")
	country = flag.String("country", "FR", "country code to answer with")
	status  = flag.Int("status", http.StatusOK, "status code to answer with")
)

func main() {
	flag.Parse()
	testutils.SetMockGeolocation(*country, *status)
	http.HandleFunc("/", testutils.MockGeolocationHandler)
	fmt.Printf("geolocation backend listening on localhost:%d\n", *port)
	if err := http.ListenAndServe(fmt.Sprintf("localhost:%d", *port), nil); err != nil {
		log.Crit("geolocation backend stopped", "error", err)
	}
}
