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
	"encoding/json"
	"time"

	"github.com/contriboss/depsolve-mcts/internal/model"
)

// rawRecord mirrors one vulnerability entry from the upstream keyword
// search response, loosely shaped after OSV's per-vulnerability record
// (id, summary, aliases) plus an explicit severity/CVSS pair for banding.
type rawRecord struct {
	ID         string     `json:"id"`
	Summary    string     `json:"summary"`
	Details    string     `json:"details"`
	Severity   string     `json:"severity"`
	CVSSScore  *float64   `json:"cvss_score"`
	Published  *time.Time `json:"published"`
	Modified   *time.Time `json:"modified"`
	References []string   `json:"references"`
}

type rawResponse struct {
	Vulnerabilities []rawRecord `json:"vulnerabilities"`
}

// Decode parses a keyword-search response into a normalized
// VulnerabilityList, banding severity from CVSS when no explicit label is
// present.
func Decode(raw []byte) (model.VulnerabilityList, error) {
	var resp rawResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}

	list := make(model.VulnerabilityList, 0, len(resp.Vulnerabilities))
	for _, rec := range resp.Vulnerabilities {
		severity := model.Severity(rec.Severity)
		if severity == "" {
			severity = model.SeverityUnknown
			if rec.CVSSScore != nil {
				severity = model.SeverityFromCVSS(*rec.CVSSScore)
			}
		}

		description := rec.Summary
		if description == "" {
			description = rec.Details
		}

		list = append(list, model.CveItem{
			ID:          rec.ID,
			Description: description,
			Severity:    severity,
			CVSS:        rec.CVSSScore,
			Published:   rec.Published,
			Modified:    rec.Modified,
			References:  rec.References,
		})
	}
	return list, nil
}
