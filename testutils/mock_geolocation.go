/*
 * Dummy geolocation backend answering a plain-text country code.
 */
package testutils

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	mu                          sync.Mutex
	mockGeolocationCountry      = "FR"
	mockGeolocationStatus       = http.StatusOK
	MockGeolocationNumRequests  int
	MockGeolocationLastRequest  *http.Request
	MockGeolocationLastRequestT time.Time
)

func MockGeolocationReset() {
	mu.Lock()
	defer mu.Unlock()
	mockGeolocationCountry = "FR"
	mockGeolocationStatus = http.StatusOK
	MockGeolocationNumRequests = 0
	MockGeolocationLastRequest = nil
	MockGeolocationLastRequestT = time.Time{}
}

// SetMockGeolocation sets the country code and status code the backend answers with.
func SetMockGeolocation(country string, status int) {
	mu.Lock()
	defer mu.Unlock()
	mockGeolocationCountry = strings.ToUpper(country)
	mockGeolocationStatus = status
}

func MockGeolocationRequests() int {
	mu.Lock()
	defer mu.Unlock()
	return MockGeolocationNumRequests
}

// MockGeolocationForwardedFor returns the X-Forwarded-For header of the last request.
func MockGeolocationForwardedFor() string {
	mu.Lock()
	defer mu.Unlock()
	if MockGeolocationLastRequest == nil {
		return ""
	}
	return MockGeolocationLastRequest.Header.Get("X-Forwarded-For")
}

func MockGeolocationHandler(w http.ResponseWriter, req *http.Request) {
	mu.Lock()
	MockGeolocationNumRequests++
	MockGeolocationLastRequest = req
	MockGeolocationLastRequestT = time.Now()
	country, status := mockGeolocationCountry, mockGeolocationStatus
	mu.Unlock()

	log.Printf("%s %s %s -> %d %s\n", req.RemoteAddr, req.Method, req.URL, status, country)

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	if status == http.StatusOK {
		w.Write([]byte(country))
	}
}
