// ABOUTME: HTTP client shared by CLI commands that talk to the server
// ABOUTME: Handles auth headers, JSON round trips, and the error envelope
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8080"

// apiClient talks to a running docqa server
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// newClient builds a client from flags and environment
func newClient(cmd *cobra.Command) *apiClient {
	_ = godotenv.Load()

	baseURL, _ := cmd.Flags().GetString("server")
	if baseURL == "" {
		baseURL = os.Getenv("DOCQA_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = defaultServerURL
	}

	return &apiClient{
		baseURL: baseURL,
		token:   os.Getenv("AUTH_TOKEN"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var env struct {
			Error struct {
				Kind    string `json:"kind"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &env) == nil && env.Error.Message != "" {
			return fmt.Errorf("server error (%s): %s", env.Error.Kind, env.Error.Message)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *apiClient) getJSON(path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, "", out)
}

func (c *apiClient) postJSON(path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}
	return c.do(http.MethodPost, path, &buf, "application/json", out)
}

func (c *apiClient) delete(path string, out interface{}) error {
	return c.do(http.MethodDelete, path, nil, "", out)
}

// uploadFile posts a local file as multipart form data
func (c *apiClient) uploadFile(path, documentID string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if documentID != "" {
		if err := mw.WriteField("document_id", documentID); err != nil {
			return fmt.Errorf("writing form field: %w", err)
		}
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing form: %w", err)
	}

	return c.do(http.MethodPost, "/documents/upload", &buf, mw.FormDataContentType(), out)
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}
