package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/skillsight/internal/logger"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	// Size of the response body preview written to debug logs.
	logPreviewLength = 200
)

// response is a fully read backend response.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= http.StatusOK && r.status < http.StatusMultipleChoices
}

func (c *Client) getJSON(ctx context.Context, url string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return newServerError(resp.status, resp.body)
	}

	return decodeBody(resp.body, target)
}

func (c *Client) postJSON(ctx context.Context, url string, payload, target any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.request(req)
	if err != nil {
		return err
	}

	if !resp.ok() {
		return newServerError(resp.status, resp.body)
	}

	return decodeBody(resp.body, target)
}

func (c *Client) delete(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.request(c.setHeaders(req))
	if err != nil {
		return err
	}

	if !resp.ok() {
		return newServerError(resp.status, resp.body)
	}

	return nil
}

// postFile uploads a single file as multipart form data under field.
// The raw response is returned regardless of status so callers can map upload specific failures.
func (c *Client) postFile(ctx context.Context, url, field, filename string, content io.Reader) (*response, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, err
	}

	if _, err = io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.request(req)
}

func (c *Client) request(req *http.Request) (*response, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(
		zap.String(logger.FieldRequestID, requestID),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return nil, &NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
		}
	}

	log.Debug("make request")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
	}

	log.Debug("got response",
		zap.Int("status", resp.StatusCode),
		zap.String("body_preview", logger.TruncateForLog(string(data), logPreviewLength)),
	)

	return &response{status: resp.StatusCode, body: data}, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	if token := c.token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	return req
}

func decodeBody(data []byte, target any) error {
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
