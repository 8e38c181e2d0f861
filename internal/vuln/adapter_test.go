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

package vuln

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contriboss/depsolve-mcts/internal/cache"
	"github.com/contriboss/depsolve-mcts/internal/model"
)

type stubDurable struct {
	mu   sync.Mutex
	data map[cache.Key]model.VulnerabilityList
}

func newStubDurable() *stubDurable {
	return &stubDurable{data: make(map[cache.Key]model.VulnerabilityList)}
}

func (s *stubDurable) Get(key cache.Key) (model.VulnerabilityList, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubDurable) Put(key cache.Key, value model.VulnerabilityList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *stubDurable) LoadAll() (map[cache.Key]model.VulnerabilityList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[cache.Key]model.VulnerabilityList, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func newTestAdapter(fetch FetchFunc) *Adapter {
	c := cache.New[model.VulnerabilityList]("vulnerabilities", newStubDurable())
	return New(fetch, c, "npm", true, nil)
}

const sampleResponse = `{"vulnerabilities":[
	{"id":"CVE-2024-0001","summary":"prototype pollution","cvss_score":9.8},
	{"id":"CVE-2024-0002","summary":"minor info leak","severity":"LOW"}
]}`

func TestAdapterVulnerabilitiesCachesResult(t *testing.T) {
	calls := 0
	a := newTestAdapter(func(keyword string) ([]byte, error) {
		calls++
		require.Equal(t, "npm left-pad", keyword)
		return []byte(sampleResponse), nil
	})

	list, err := a.Vulnerabilities(context.Background(), "left-pad", "1.0.0")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, model.SeverityCritical, list[0].Severity)
	require.Equal(t, model.SeverityLow, list[1].Severity)

	_, err = a.Vulnerabilities(context.Background(), "left-pad", "1.0.0")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestAdapterVulnerabilitiesTransportErrorFailsOpen(t *testing.T) {
	a := newTestAdapter(func(string) ([]byte, error) { return nil, errors.New("connection refused") })

	list := a.VulnerabilitiesFailOpen(context.Background(), "left-pad", "1.0.0")
	require.Empty(t, list)
}

func TestAdapterVulnerabilitiesDecodeErrorFailsOpen(t *testing.T) {
	a := newTestAdapter(func(string) ([]byte, error) { return []byte("not json"), nil })

	list := a.VulnerabilitiesFailOpen(context.Background(), "left-pad", "1.0.0")
	require.Empty(t, list)
}

func TestAdapterVulnerabilitiesErrorPropagatesWhenNotFailedOpen(t *testing.T) {
	a := newTestAdapter(func(string) ([]byte, error) { return nil, errors.New("boom") })

	_, err := a.Vulnerabilities(context.Background(), "left-pad", "1.0.0")
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
}

func TestDecodeSeverityFallsBackToUnknownWithoutCVSS(t *testing.T) {
	list, err := Decode([]byte(`{"vulnerabilities":[{"id":"CVE-0"}]}`))
	require.NoError(t, err)
	require.Equal(t, model.SeverityUnknown, list[0].Severity)
}
