package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/grafana/microgit/log"
	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/retry"
)

// SmartInfo performs ref discovery: a GET to
// <url>/info/refs?service=git-upload-pack, parsed into an Advertisement of
// the refs the remote offers.
//
// Transient failures (network errors, 5xx) are retried when the context
// carries a retrier; a GET has no body, so it is always safe to resend.
//
// See https://git-scm.com/docs/http-protocol#_smart_clients
func (c *RawClient) SmartInfo(ctx context.Context) (*protocol.Advertisement, error) {
	u := c.base.JoinPath("info/refs")

	query := make(url.Values)
	query.Set("service", "git-upload-pack")
	u.RawQuery = query.Encode()

	logger := log.FromContext(ctx)
	logger.Debug("smart info", "url", u.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	c.addDefaultHeaders(req)

	res, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if err := checkResponseStatus(res); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading advertisement: %w", err)
	}

	logger.Debug("smart info response",
		"status", res.StatusCode,
		"body_size", len(body))

	adv, err := protocol.ParseAdvertisement(body)
	if err != nil {
		return nil, err
	}

	logger.Debug("discovered refs",
		"ref_count", len(adv.Refs),
		"capability_count", len(adv.Capabilities))

	return adv, nil
}

// doWithRetry sends a body-less request, retrying per the context retrier on
// network errors and 5xx responses.
func (c *RawClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	logger := log.FromContext(ctx)
	retrier := retry.FromContext(ctx)

	maxAttempts := retrier.MaxAttempts()
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var res *http.Response
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err = c.client.Do(req)
		if err != nil {
			if attempt < maxAttempts && retrier.ShouldRetry(err, attempt) {
				logger.Debug("network error, retrying",
					"attempt", attempt,
					"max_attempts", maxAttempts,
					"error", err)
				if waitErr := retrier.Wait(ctx, attempt); waitErr != nil {
					return nil, fmt.Errorf("context cancelled during retry wait: %w", waitErr)
				}
				continue
			}
			return nil, err
		}

		if res.StatusCode >= 500 && attempt < maxAttempts {
			_ = res.Body.Close()
			logger.Debug("server error, retrying",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"status_code", res.StatusCode)
			if waitErr := retrier.Wait(ctx, attempt); waitErr != nil {
				return nil, fmt.Errorf("context cancelled during retry wait: %w", waitErr)
			}
			continue
		}

		return res, nil
	}

	if res == nil {
		return nil, fmt.Errorf("no response received after %d attempts", maxAttempts)
	}
	return res, nil
}
