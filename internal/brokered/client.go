// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package brokered

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"

	"github.com/mediacircle/searchd/internal/buildinfo"
)

const maxResponseBytes int64 = 4 << 20 // 4 MiB safety limit for provider payloads

var errProviderPanic = errors.New("provider panicked")

// HTTPError carries the upstream status so the adapter can surface it as a
// structured status_code.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d for %s", e.Status, e.URL)
}

// statusCodeOf maps a fetch error to the status code reported in the
// brokered error envelope. Transport failures report 502, timeouts 504.
func statusCodeOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// httpClient is the shared transport configuration for provider clients.
// Each provider owns its own client so slow providers cannot exhaust a
// shared pool.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// getJSON performs a GET with one bounded retry on transient transport
// errors and decodes the JSON body into dest. HTTP 4xx/5xx are not
// retried; they become an *HTTPError.
func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, dest any) error {
	full := endpoint
	if len(params) > 0 {
		full = endpoint + "?" + params.Encode()
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", buildinfo.UserAgent)

			resp, err := client.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(ctx.Err())
				}
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
				return retry.Unrecoverable(&HTTPError{Status: resp.StatusCode, URL: endpoint})
			}

			body := io.LimitReader(resp.Body, maxResponseBytes)
			if err := json.NewDecoder(body).Decode(dest); err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "decode provider response"))
			}
			return nil
		},
		retry.Attempts(2),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var netErr net.Error
			return errors.As(err, &netErr)
		}),
	)
}
