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
	"log/slog"
	"strings"

	"github.com/contriboss/depsolve-mcts/internal/cache"
	"github.com/contriboss/depsolve-mcts/internal/model"
	"github.com/contriboss/depsolve-mcts/internal/versionrange"
)

// FetchFunc is the registry collaborator: it returns the registry's native
// document for name. Authentication headers are the collaborator's concern.
type FetchFunc func(name string) ([]byte, error)

// Adapter resolves (name, range) requests to a PackageInfo, consulting the
// cache before the remote collaborator.
type Adapter struct {
	fetchRaw FetchFunc
	decode   DecoderFactory
	cache    *cache.Cache[RawPackage]
	logger   *slog.Logger
}

// New builds an Adapter. decode defaults to a static DecodeJSON factory
// when nil.
func New(fetchRaw FetchFunc, c *cache.Cache[RawPackage], decode DecoderFactory, logger *slog.Logger) *Adapter {
	if decode == nil {
		decode = StaticDecoder(DecodeJSON)
	}
	return &Adapter{fetchRaw: fetchRaw, decode: decode, cache: c, logger: logger}
}

type filteredVersion struct {
	raw     string
	version versionrange.Version
}

func filterPrerelease(pkg RawPackage) []filteredVersion {
	out := make([]filteredVersion, 0, len(pkg))
	for raw := range pkg {
		if strings.Contains(raw, "-") {
			continue
		}
		v, err := versionrange.ParseVersion(raw)
		if err != nil {
			continue
		}
		out = append(out, filteredVersion{raw: raw, version: v})
	}
	return out
}

// load fetches the raw package document for (name, tag) via cache then the
// remote collaborator, caching a remote hit under tag.
func (a *Adapter) load(name, tag string) (RawPackage, error) {
	key := cache.Key{Name: name, VersionKey: tag}
	if pkg, ok := a.cache.Get(key); ok {
		return pkg, nil
	}

	raw, err := a.fetchRaw(name)
	if err != nil {
		return nil, &TransportError{Package: name, Err: err}
	}

	pkg, err := a.decode(tag)(raw)
	if err != nil {
		return nil, &DecodeError{Package: name, Err: err}
	}

	if err := a.cache.Put(key, pkg); err != nil && a.logger != nil {
		a.logger.Warn("registry: cache put failed", "package", name, "error", err)
	}
	return pkg, nil
}

// Fetch resolves (name, rangeString) to a PackageInfo per the fetch
// contract: cache-tagged lookup, pre-release filtering, exact-version
// short-circuit when that version is published, else best_match.
func (a *Adapter) Fetch(name, rangeString string) (model.PackageInfo, error) {
	pkg, err := a.load(name, rangeString)
	if err != nil {
		return model.PackageInfo{}, err
	}

	filtered := filterPrerelease(pkg)
	if len(filtered) == 0 {
		return model.PackageInfo{}, &NotFoundError{Package: name, Range: rangeString}
	}

	var selected string
	if exact, err := versionrange.ParseVersion(rangeString); err == nil {
		for _, fv := range filtered {
			if fv.version.Compare(exact) == 0 {
				selected = fv.raw
				break
			}
		}
	}
	if selected == "" {
		r, parseErr := versionrange.Parse(rangeString)
		if parseErr != nil {
			return model.PackageInfo{}, &NotFoundError{Package: name, Range: rangeString}
		}
		candidates := make([]versionrange.Version, len(filtered))
		byVersion := make(map[versionrange.Version]string, len(filtered))
		for i, fv := range filtered {
			candidates[i] = fv.version
			byVersion[fv.version] = fv.raw
		}
		if best, ok := versionrange.BestMatch(r, candidates); ok {
			selected = byVersion[best]
		}
	}

	if selected == "" {
		return model.PackageInfo{}, &NotFoundError{Package: name, Range: rangeString}
	}

	return toPackageInfo(name, selected, pkg[selected]), nil
}

// AvailableVersions returns every non-pre-release version of name,
// newest-first, triggering a fetch tagged "*" on cache miss.
func (a *Adapter) AvailableVersions(name string) ([]versionrange.Version, error) {
	pkg, err := a.load(name, "*")
	if err != nil {
		return nil, err
	}

	filtered := filterPrerelease(pkg)
	versions := make([]versionrange.Version, len(filtered))
	for i, fv := range filtered {
		versions[i] = fv.version
	}
	versionrange.SortVersions(versions)
	return versions, nil
}

// PackageAt returns the record for an exact version, or NotFoundError.
func (a *Adapter) PackageAt(name string, version versionrange.Version) (model.PackageInfo, error) {
	return a.Fetch(name, version.String())
}

func toPackageInfo(name, versionKey string, rec VersionRecord) model.PackageInfo {
	v, err := versionrange.ParseVersion(versionKey)
	if err != nil {
		v = versionrange.Version{}
	}
	return model.PackageInfo{
		Name:            name,
		ResolvedVersion: v,
		RuntimeDeps:     rec.RuntimeDeps,
		DevDeps:         rec.DevDeps,
		PeerDeps:        rec.PeerDeps,
	}
}
