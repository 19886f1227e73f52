package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/starford/crmai/internal/models"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// postJSON sends body to endpoint and decodes a 2xx response into out. Non-2xx
// responses become taxonomy errors; transport failures become ErrProvider
// with the cause attached.
func postJSON(ctx context.Context, hc *http.Client, p models.Provider, endpoint string, header http.Header, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("ai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := hc.Do(req)
	if err != nil {
		// Never echo the URL: the Gemini key travels in its query string.
		cause := err
		var uerr *url.Error
		if errors.As(err, &uerr) {
			cause = uerr.Err
		}
		return &Error{Kind: ErrProvider, Provider: p, Message: cause.Error(), Cause: cause}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(p, resp.StatusCode, errorMessage(resp.StatusCode, data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: ErrProvider, Provider: p, Status: resp.StatusCode, Message: "undecodable response: " + err.Error(), Cause: err}
	}
	return nil
}

// errorMessage pulls error.message or error.status from a JSON body. Other
// JSON bodies are returned verbatim; anything else yields the status text.
func errorMessage(status int, data []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return http.StatusText(status)
	}
	switch {
	case body.Error.Message != "":
		return body.Error.Message
	case body.Error.Status != "":
		return body.Error.Status
	}
	return string(bytes.TrimSpace(data))
}
