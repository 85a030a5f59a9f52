package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const uploadField = "file"

type parseResumeResponse struct {
	Text string `json:"text"`
}

// ParseResume uploads a resume file and returns the text the backend extracted from it.
func (c *Client) ParseResume(ctx context.Context, filename string, content io.Reader) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." {
		return "", &ParseError{Message: "No file uploaded"}
	}

	resp, err := c.postFile(ctx, c.url(parseResumePath), uploadField, name, content)
	if err != nil {
		return "", err
	}

	if !resp.ok() {
		return "", uploadError(name, resp)
	}

	var parsed parseResumeResponse
	if err := decodeBody(resp.body, &parsed); err != nil {
		return "", err
	}

	return parsed.Text, nil
}

// uploadError maps a failed upload. Client side rejections (4xx) are parse
// errors; unstructured bodies get a distinct message since they usually come
// from a proxy refusing a large file.
func uploadError(name string, resp *response) error {
	body, structured := decodeErrorBody(resp.body)

	if !structured {
		msg := fmt.Sprintf("Server returned an error (%d). Check if the file is too large.", resp.status)
		if resp.status == http.StatusRequestEntityTooLarge {
			return &ParseError{File: name, Message: msg}
		}
		return &ServerError{Status: resp.status, Message: msg}
	}

	msg := body.Error
	if msg == "" {
		msg = fmt.Sprintf("Server error (%d)", resp.status)
	}

	if resp.status >= http.StatusBadRequest && resp.status < http.StatusInternalServerError {
		return &ParseError{File: name, Message: msg}
	}

	return &ServerError{Status: resp.status, Message: msg}
}
