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

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Severity is one of the CVSS-derived severity buckets.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityNone     Severity = "NONE"
	SeverityUnknown  Severity = "UNKNOWN"
)

// SeverityFromCVSS bands a CVSS base score into a Severity when the
// upstream record carries no explicit label: >=9 CRITICAL, >=7 HIGH,
// >=4 MEDIUM, >=0.1 LOW, else NONE.
func SeverityFromCVSS(score float64) Severity {
	switch {
	case score >= 9:
		return SeverityCritical
	case score >= 7:
		return SeverityHigh
	case score >= 4:
		return SeverityMedium
	case score >= 0.1:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// CveItem is one vulnerability record.
type CveItem struct {
	ID          string
	Description string
	Severity    Severity
	CVSS        *float64
	Published   *time.Time
	Modified    *time.Time
	References  []string
}

// VulnerabilityList is an ordered sequence of CveItem with derived
// per-severity counts.
type VulnerabilityList []CveItem

// CountBySeverity tallies items per severity bucket.
func (l VulnerabilityList) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 6)
	for _, item := range l {
		counts[item.Severity]++
	}
	return counts
}

// VulnerabilityThreshold is four non-negative upper bounds, one per
// severity bucket (NONE/UNKNOWN are never bounded).
type VulnerabilityThreshold struct {
	MaxCritical int
	MaxHigh     int
	MaxMedium   int
	MaxLow      int
}

// Passes reports whether every severity count in l is within its bound.
func (t VulnerabilityThreshold) Passes(l VulnerabilityList) bool {
	counts := l.CountBySeverity()
	return counts[SeverityCritical] <= t.MaxCritical &&
		counts[SeverityHigh] <= t.MaxHigh &&
		counts[SeverityMedium] <= t.MaxMedium &&
		counts[SeverityLow] <= t.MaxLow
}

// ParseThreshold decodes the external threshold encoding:
//
//	"CRITICAL"        -> max 0 critical
//	"HIGH"             -> max 0 critical and high
//	"MEDIUM"           -> extends to medium
//	"LOW"              -> extends to low
//	"CUSTOM:c,h,m,l"   -> explicit caps
//
// Any other value disables threshold filtering (ok=false).
func ParseThreshold(s string) (t VulnerabilityThreshold, ok bool) {
	switch s {
	case "CRITICAL":
		return VulnerabilityThreshold{MaxCritical: 0, MaxHigh: maxInt, MaxMedium: maxInt, MaxLow: maxInt}, true
	case "HIGH":
		return VulnerabilityThreshold{MaxCritical: 0, MaxHigh: 0, MaxMedium: maxInt, MaxLow: maxInt}, true
	case "MEDIUM":
		return VulnerabilityThreshold{MaxCritical: 0, MaxHigh: 0, MaxMedium: 0, MaxLow: maxInt}, true
	case "LOW":
		return VulnerabilityThreshold{MaxCritical: 0, MaxHigh: 0, MaxMedium: 0, MaxLow: 0}, true
	}

	if rest, found := strings.CutPrefix(s, "CUSTOM:"); found {
		parts := strings.Split(rest, ",")
		if len(parts) != 4 {
			return VulnerabilityThreshold{}, false
		}
		values := make([]int, 4)
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 {
				return VulnerabilityThreshold{}, false
			}
			values[i] = n
		}
		return VulnerabilityThreshold{
			MaxCritical: values[0],
			MaxHigh:     values[1],
			MaxMedium:   values[2],
			MaxLow:      values[3],
		}, true
	}

	return VulnerabilityThreshold{}, false
}

// maxInt is used as an effectively-unbounded cap for severity buckets a
// preset threshold does not constrain.
const maxInt = int(^uint(0) >> 1)

func (t VulnerabilityThreshold) String() string {
	return fmt.Sprintf("CUSTOM:%d,%d,%d,%d", t.MaxCritical, t.MaxHigh, t.MaxMedium, t.MaxLow)
}
