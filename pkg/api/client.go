// Package api implements the HTTP client side of the coordinator
// protocol. Every call performs exactly one round trip; retry and
// backoff policy belongs to the caller.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hildist/hildist/pkg/protocol"
)

// StatusError is returned when the coordinator replies with an
// unexpected status. Detail carries the server's explanation when
// the response body contained one.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("coordinator replied %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("coordinator replied %d", e.Status)
}

func (e *StatusError) Details() string {
	return e.Detail
}

// NewStatusError builds a StatusError from a response body, decoding
// the detail field if the body is a coordinator error document.
func NewStatusError(status int, body []byte) error {
	response := protocol.ErrorResponse{}
	if err := json.Unmarshal(body, &response); err == nil && response.Detail != "" {
		return &StatusError{Status: status, Detail: response.Detail}
	}
	return &StatusError{Status: status, Detail: strings.TrimSpace(string(body))}
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetRaw performs a GET and returns the body and status code. An
// error is only returned for transport failures, status handling is
// left to the caller.
func (c *Client) GetRaw(path string) ([]byte, int, error) {
	response, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("response read failed: %w", err)
	}

	return body, response.StatusCode, nil
}

// GetJSON performs a GET and decodes a JSON body into out. No
// content responses leave out untouched. Non-2xx responses are not
// decoded.
func (c *Client) GetJSON(path string, out any) (int, error) {
	body, status, err := c.GetRaw(path)
	if err != nil {
		return 0, err
	}

	if status == http.StatusNoContent || status >= 300 || out == nil {
		return status, nil
	}

	return status, unmarshal(body, out)
}

// PostRaw performs a POST and returns the body and status code, with
// the same error contract as GetRaw.
func (c *Client) PostRaw(path, contentType string, body []byte) ([]byte, int, error) {
	response, err := c.client.Post(c.baseURL+path, contentType, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("response read failed: %w", err)
	}

	return data, response.StatusCode, nil
}

// PostJSON marshals in as the request body and decodes a JSON
// response into out when out is non-nil. A nil in posts an empty
// body.
func (c *Client) PostJSON(path string, in, out any) (int, error) {
	var payload []byte
	var err error

	if in != nil {
		payload, err = json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("request encode failed: %w", err)
		}
	}

	body, status, err := c.PostRaw(path, "application/json", payload)
	if err != nil {
		return 0, err
	}

	if status == http.StatusNoContent || status >= 300 || out == nil {
		return status, nil
	}

	return status, unmarshal(body, out)
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func unmarshal(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("response decode failed: %w", err)
	}
	return nil
}
