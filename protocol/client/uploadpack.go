package client

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/grafana/microgit/log"
)

// UploadPack POSTs a negotiation body to the git-upload-pack endpoint and
// returns the response bytes: a pkt-line stream multiplexing the pack with
// progress and error channels.
//
// POSTs are not retried; the negotiation is cheap to rebuild and the caller
// owns that decision.
func (c *RawClient) UploadPack(ctx context.Context, body []byte) ([]byte, error) {
	u := c.base.JoinPath("git-upload-pack").String()

	logger := log.FromContext(ctx)
	logger.Debug("upload-pack", "url", u, "request_size", len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-git-upload-pack-request")
	req.Header.Set("Accept", "application/x-git-upload-pack-result")
	c.addDefaultHeaders(req)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if err := checkResponseStatus(res); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	logger.Debug("upload-pack response",
		"status", res.StatusCode,
		"response_size", len(data))

	return data, nil
}
