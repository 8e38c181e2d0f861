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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	pkg, err := DecodeJSON([]byte(`{"1.0.0":{"version":"1.0.0","dependencies":{"base":"^1.0.0"}}}`))
	require.NoError(t, err)
	require.Contains(t, pkg, "1.0.0")
	require.Equal(t, "^1.0.0", pkg["1.0.0"].RuntimeDeps["base"])
}

func TestDecodeJSONMalformed(t *testing.T) {
	_, err := DecodeJSON([]byte("not json"))
	require.Error(t, err)
}

func TestDecodeGoModAt(t *testing.T) {
	content := []byte(`module example.com/widget

go 1.23

require (
	github.com/base/base v1.0.0
	github.com/indirect/indirect v0.1.0 // indirect
)
`)
	pkg, err := DecodeGoModAt("1.2.3")(content)
	require.NoError(t, err)
	require.Contains(t, pkg, "1.2.3")
	rec := pkg["1.2.3"]
	require.Equal(t, "1.0.0", rec.RuntimeDeps["github.com/base/base"])
	require.NotContains(t, rec.RuntimeDeps, "github.com/indirect/indirect")
}
