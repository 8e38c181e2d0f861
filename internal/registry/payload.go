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
	"strings"

	"golang.org/x/mod/modfile"
)

// VersionRecord is one published version's dependency manifest.
type VersionRecord struct {
	Version     string            `json:"version"`
	RuntimeDeps map[string]string `json:"dependencies"`
	DevDeps     map[string]string `json:"devDependencies"`
	PeerDeps    map[string]string `json:"peerDependencies"`
}

// RawPackage is the registry's native document for one package: every
// published version keyed by its exact version string, pre-release
// versions included.
type RawPackage map[string]VersionRecord

// Decoder turns a registry's raw bytes into a RawPackage.
type Decoder func(raw []byte) (RawPackage, error)

// DecoderFactory produces the Decoder to use for one load call, keyed by
// the tag (version or range string) Adapter.load was called with. Most
// registries decode every document the same way regardless of tag;
// StaticDecoder covers that default case. DecodeGoModAt itself already
// has this shape, since a go.mod payload never carries its own version
// string and needs the tag to label the RawPackage it synthesizes.
type DecoderFactory func(tag string) Decoder

// StaticDecoder wraps a Decoder that never needs the fetch tag into a
// DecoderFactory.
func StaticDecoder(d Decoder) DecoderFactory {
	return func(string) Decoder { return d }
}

// DecodeJSON is the default Decoder: the registry document is a JSON
// object mapping version string to VersionRecord.
func DecodeJSON(raw []byte) (RawPackage, error) {
	var pkg RawPackage
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// DecodeGoModAt returns a Decoder that treats raw as a single go.mod file
// fetched for the given module version (the Go module proxy encodes the
// version in the request path, not the file itself) and synthesizes a
// one-version RawPackage from its require block, indirect requirements
// excluded. Useful when the registry collaborator fronts a Go module proxy
// rather than a JSON metadata endpoint.
func DecodeGoModAt(version string) Decoder {
	return func(raw []byte) (RawPackage, error) {
		mod, err := modfile.Parse("go.mod", raw, nil)
		if err != nil {
			return nil, err
		}

		deps := make(map[string]string)
		for _, req := range mod.Require {
			if req.Indirect {
				continue
			}
			deps[req.Mod.Path] = strings.TrimPrefix(req.Mod.Version, "v")
		}

		return RawPackage{
			version: VersionRecord{Version: version, RuntimeDeps: deps},
		}, nil
	}
}
