package server_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drift-labs/drift-common/server"
)

func TestFingerprint_RotatesHourly(t *testing.T) {
	req, err := http.NewRequest("GET", "http://example.com", nil)
	require.NoError(t, err)

	req.Header.Set("X-Forwarded-For", "2600:8802:4700:bee:d13c:c7fb:8e0f:84ff, 172.70.210.100")
	fingerprint1, err := server.FingerprintFromRequest(req, time.Date(2022, 1, 1, 1, 2, 3, 4, time.UTC))
	require.NoError(t, err)
	require.Len(t, fingerprint1.SessionId(), 16)

	sameHour, err := server.FingerprintFromRequest(req, time.Date(2022, 1, 1, 1, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, fingerprint1, sameHour)

	fingerprint2, err := server.FingerprintFromRequest(req, time.Date(2022, 1, 1, 2, 3, 4, 5, time.UTC))
	require.NoError(t, err)
	require.NotEqual(t, fingerprint1, fingerprint2)
}

func TestFingerprint_SkipsPrivateAddresses(t *testing.T) {
	at := time.Date(2022, 1, 1, 1, 0, 0, 0, time.UTC)

	withProxy, err := http.NewRequest("GET", "http://example.com", nil)
	require.NoError(t, err)
	withProxy.Header.Set("X-Forwarded-For", "10.0.0.1, 203.0.113.5")

	direct, err := http.NewRequest("GET", "http://example.com", nil)
	require.NoError(t, err)
	direct.RemoteAddr = "203.0.113.5:4312"

	fp1, err := server.FingerprintFromRequest(withProxy, at)
	require.NoError(t, err)
	fp2, err := server.FingerprintFromRequest(direct, at)
	require.NoError(t, err)
	require.Equal(t, fp1, fp2)
}
