// Copyright 2025 Contriboss
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

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// httpFetchRaw builds a registry.FetchFunc that issues a GET against
// base+name and returns the response body verbatim. The registry and
// vulnerability HTTP transports are outside depsolve-mcts's core (see
// internal/registry and internal/vuln, which only ever see a FetchFunc
// closure); this is the one place that closure is actually wired to the
// network.
func httpFetchRaw(client *http.Client, base, authToken string) func(name string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		endpoint, err := url.JoinPath(base, url.PathEscape(name))
		if err != nil {
			return nil, fmt.Errorf("transport: build url for %s: %w", name, err)
		}
		return doGet(client, endpoint, authToken)
	}
}

// httpFetchCVEs builds a vuln.FetchFunc that issues a GET keyword search
// against base.
func httpFetchCVEs(client *http.Client, base, authToken string) func(keyword string) ([]byte, error) {
	return func(keyword string) ([]byte, error) {
		endpoint, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("transport: parse vulnerability endpoint: %w", err)
		}
		q := endpoint.Query()
		q.Set("q", keyword)
		endpoint.RawQuery = q.Encode()
		return doGet(client, endpoint.String(), authToken)
	}
}

func doGet(client *http.Client, endpoint, authToken string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transport: %s returned status %d", endpoint, resp.StatusCode)
	}
	return body, nil
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
