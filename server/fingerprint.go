package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/drift-labs/drift-common/utils"
)

type Fingerprint uint64

// FingerprintFromRequest returns a fingerprint for the request based on the X-Forwarded-For header
// (or the remote address when there is none) and a salted timestamp. It identifies a geoblock
// session without storing the client address.
func FingerprintFromRequest(req *http.Request, at time.Time) (Fingerprint, error) {
	ip, err := getXForwardedForIP(req)
	if err != nil {
		ip, err = getRemoteIP(req)
		if err != nil {
			return 0, err
		}
	}
	// salted with the current hour, so sessions rotate every hour
	if at.IsZero() {
		at = time.Now().UTC()
	}
	currentHour := at.Truncate(time.Hour)
	fingerprintPreimage := fmt.Sprintf("IP:%s|SALT:%d", ip, currentHour.Unix())
	return Fingerprint(xxhash.Sum64String(fingerprintPreimage)), nil
}

func (f Fingerprint) SessionId() string {
	return fmt.Sprintf("%016x", uint64(f))
}

func getXForwardedForIP(r *http.Request) (string, error) {
	// gets the left-most non-private IP in the X-Forwarded-For header
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return "", fmt.Errorf("no X-Forwarded-For header")
	}
	ips := strings.Split(xff, ",")
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if !utils.IsPrivateIP(ip) {
			return ip, nil
		}
	}
	return "", fmt.Errorf("no non-private IP in X-Forwarded-For header")
}

func getRemoteIP(r *http.Request) (string, error) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "", fmt.Errorf("no remote address")
		}
		return r.RemoteAddr, nil
	}
	return host, nil
}
