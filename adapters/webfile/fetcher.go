package webfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

var ErrRequest = fmt.Errorf("request failed")

// https://geolocation.drift-labs.workers.dev/

type Fetcher struct {
	url    string
	header http.Header
	cl     http.Client
}

func NewFetcher(url string) *Fetcher {
	return &Fetcher{url: url, header: make(http.Header), cl: http.Client{}}
}

// WithHeader returns a copy of the fetcher that sends an extra header with every request.
func (f *Fetcher) WithHeader(key, value string) *Fetcher {
	header := f.header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(key, value)
	return &Fetcher{url: f.url, header: header, cl: f.cl}
}

func (f *Fetcher) URL() string {
	return f.url
}

// Fetch executes one uncached GET. Non-2xx responses are reported as ErrRequest.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range f.header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Pragma", "no-cache")

	resp, err := f.cl.Do(httpReq)
	if err != nil {
		return nil, err
	}
	bts, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("err: %w status code %d", ErrRequest, resp.StatusCode)
	}
	return bts, nil
}
