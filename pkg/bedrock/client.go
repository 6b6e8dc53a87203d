// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bedrock implements a minimal Amazon Bedrock runtime client for
// the InvokeModel API, shared by the embedding and generation clients.
package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultRegion is the Bedrock region used when none is configured.
const DefaultRegion = "ap-northeast-1"

// Config configures the Bedrock runtime client.
type Config struct {
	// Region selects the Bedrock runtime endpoint
	// (https://bedrock-runtime.{region}.amazonaws.com).
	Region string

	// Endpoint overrides the region-derived endpoint. Used in tests.
	Endpoint string

	// APIKey is a Bedrock API key, sent as a bearer token (required).
	APIKey string

	// Timeout for API requests (default: 60s).
	Timeout time.Duration
}

// Client invokes Bedrock models synchronously. No retries: a failed call
// surfaces to the caller, which reissues the whole request.
type Client struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// APIError is a non-2xx response from the Bedrock runtime.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("bedrock API returned status %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a new Bedrock runtime client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for Bedrock")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		region := cfg.Region
		if region == "" {
			region = DefaultRegion
		}
		endpoint = fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", region)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
	}, nil
}

// InvokeModel sends the JSON payload to the model and returns the raw
// response body.
func (c *Client) InvokeModel(ctx context.Context, modelID string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	invokeURL := fmt.Sprintf("%s/model/%s/invoke", c.endpoint, url.PathEscape(modelID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, invokeURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Bedrock: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp struct {
			Message string `json:"message"`
		}
		message := string(body)
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Message != "" {
			message = errorResp.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	return body, nil
}
