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

package registry

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contriboss/depsolve-mcts/internal/cache"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

type stubDurable struct {
	mu   sync.Mutex
	data map[cache.Key]RawPackage
}

func newStubDurable() *stubDurable {
	return &stubDurable{data: make(map[cache.Key]RawPackage)}
}

func (s *stubDurable) Get(key cache.Key) (RawPackage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubDurable) Put(key cache.Key, value RawPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *stubDurable) LoadAll() (map[cache.Key]RawPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[cache.Key]RawPackage, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}

func samplePayload() []byte {
	pkg := RawPackage{
		"1.0.0": {Version: "1.0.0", RuntimeDeps: map[string]string{"base": "^1.0.0"}},
		"1.1.0": {Version: "1.1.0", RuntimeDeps: map[string]string{"base": "^1.0.0"}},
		"2.0.0": {Version: "2.0.0", RuntimeDeps: map[string]string{"base": "^2.0.0"}},
		"2.1.0-rc.1": {Version: "2.1.0-rc.1"},
	}
	raw, err := json.Marshal(pkg)
	if err != nil {
		panic(err)
	}
	return raw
}

func newTestAdapter(t *testing.T, fetch FetchFunc) *Adapter {
	t.Helper()
	c := cache.New[RawPackage]("metadata", newStubDurable())
	return New(fetch, c, nil, nil)
}

func TestAdapterFetchExactVersion(t *testing.T) {
	calls := 0
	fetch := func(name string) ([]byte, error) {
		calls++
		return samplePayload(), nil
	}
	a := newTestAdapter(t, fetch)

	info, err := a.Fetch("widget", "1.1.0")
	require.NoError(t, err)
	require.Equal(t, "1.1.0", info.ResolvedVersion.String())
	require.Equal(t, map[string]string{"base": "^1.0.0"}, info.RuntimeDeps)
	require.Equal(t, 1, calls)

	// Different range string is a different cache tag, so it fetches again.
	_, err = a.Fetch("widget", "^2.0.0")
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	// Re-fetching the same tag hits the cache.
	_, err = a.Fetch("widget", "1.1.0")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestAdapterFetchBestMatch(t *testing.T) {
	a := newTestAdapter(t, func(string) ([]byte, error) { return samplePayload(), nil })

	info, err := a.Fetch("widget", "^1.0.0")
	require.NoError(t, err)
	require.Equal(t, "1.1.0", info.ResolvedVersion.String())
}

func TestAdapterFetchExcludesPrerelease(t *testing.T) {
	a := newTestAdapter(t, func(string) ([]byte, error) { return samplePayload(), nil })

	_, err := a.Fetch("widget", "2.1.0-rc.1")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestAdapterFetchNotFound(t *testing.T) {
	a := newTestAdapter(t, func(string) ([]byte, error) { return samplePayload(), nil })

	_, err := a.Fetch("widget", "^9.0.0")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestAdapterFetchTransportError(t *testing.T) {
	a := newTestAdapter(t, func(string) ([]byte, error) { return nil, errors.New("dial tcp: timeout") })

	_, err := a.Fetch("widget", "1.0.0")
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
}

func TestAdapterFetchDecodeError(t *testing.T) {
	a := newTestAdapter(t, func(string) ([]byte, error) { return []byte("not json"), nil })

	_, err := a.Fetch("widget", "1.0.0")
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
}

func TestAdapterAvailableVersionsNewestFirst(t *testing.T) {
	a := newTestAdapter(t, func(string) ([]byte, error) { return samplePayload(), nil })

	versions, err := a.AvailableVersions("widget")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	require.Equal(t, "2.0.0", versions[0].String())
	require.Equal(t, "1.1.0", versions[1].String())
	require.Equal(t, "1.0.0", versions[2].String())
}

func TestAdapterPackageAt(t *testing.T) {
	a := newTestAdapter(t, func(string) ([]byte, error) { return samplePayload(), nil })

	v := versionrange.MustParseVersion("2.0.0")
	info, err := a.PackageAt("widget", v)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"base": "^2.0.0"}, info.RuntimeDeps)
}
