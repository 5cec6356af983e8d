package network

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"censuskit/internal/census"
)

// MixedNetwork is the sentinel primary network reported when membership
// splits materially across multiple direct-contract networks. It is not a
// network name an operator can map a ZIP to.
const MixedNetwork = "MIXED_NETWORK"

// mixedShareNum and mixedShareDen encode the 40% mixed-membership
// threshold as a ratio, so the strictly-greater-than comparison is exact
// integer arithmetic with no float edge at the boundary.
const (
	mixedShareNum = 2
	mixedShareDen = 5
)

// Settings carry the assignment decision inputs. They are always passed
// explicitly; the engine reads no ambient state, so two runs with equal
// inputs always produce equal results.
type Settings struct {
	DefaultNetwork    string  `json:"default_network"`
	CoverageThreshold float64 `json:"coverage_threshold"`
}

// Validate rejects settings the decision ladder cannot work with.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.DefaultNetwork) == "" {
		return errors.New("default network is required")
	}
	if s.CoverageThreshold < 0 || s.CoverageThreshold > 1 {
		return fmt.Errorf("coverage threshold %v is outside [0, 1]", s.CoverageThreshold)
	}
	return nil
}

// MemberAssignment records where one member row landed and why.
type MemberAssignment struct {
	Row     int    `json:"row"`
	Zip     string `json:"zip"`
	Network string `json:"assigned_network"`
	Matched bool   `json:"matched"`
}

// InvalidRow records a member row excluded from assignment entirely.
type InvalidRow struct {
	Row    int    `json:"row"`
	RawZip string `json:"raw_zip"`
	Reason string `json:"reason"`
}

// Result is the full assignment outcome, including the per-member audit
// trail a reviewer needs to retrace the recommendation.
type Result struct {
	PrimaryNetwork     string             `json:"primary_network"`
	CoveragePercentage float64            `json:"coverage_percentage"`
	FallbackUsed       bool               `json:"fallback_used"`
	ReviewRequired     bool               `json:"review_required"`
	CensusIncomplete   bool               `json:"census_incomplete"`
	TotalMembers       int                `json:"total_members"`
	InvalidRows        []InvalidRow       `json:"invalid_rows"`
	CoverageByNetwork  map[string]float64 `json:"coverage_by_network"`
	MemberAssignments  []MemberAssignment `json:"member_assignments"`
}

// Confidence is the recommendation confidence shown to operators:
// the primary network's coverage rounded to two decimals.
func (r *Result) Confidence() float64 {
	return math.Round(r.CoveragePercentage*100) / 100
}

// Assign recommends a primary network for the given member rows.
//
// Every non-blank row's ZIP is normalized; rows whose ZIP is missing or
// does not normalize are excluded from the percentages and recorded in
// InvalidRows, marking the census incomplete and review-required. Valid
// ZIPs map through the reference table, with unmapped ZIPs tallied under
// the default network.
//
// The primary is then chosen by the first matching rung:
//
//  1. No valid rows at all: the default network, review required.
//  2. Two or more direct-contract networks each hold strictly more than
//     40% of members: MixedNetwork, review required.
//  3. The best-covered direct-contract network meets the coverage
//     threshold: that network. Count ties break alphabetically.
//  4. Otherwise: the default network, with FallbackUsed set.
//
// CoveragePercentage is always the primary's own share of valid members,
// which makes it 0 for MixedNetwork and for a default that covered nobody.
func Assign(rows []census.Row, zipHeader string, mapping *Mapping, settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("assignment settings: %w", err)
	}
	if strings.TrimSpace(zipHeader) == "" {
		return nil, errors.New("zip header is required")
	}

	lookup := map[string]string{}
	if mapping != nil {
		lookup = mapping.snapshot()
	}

	result := &Result{
		InvalidRows:       []InvalidRow{},
		CoverageByNetwork: map[string]float64{},
		MemberAssignments: []MemberAssignment{},
	}

	counts := make(map[string]int)
	for _, row := range rows {
		if row.IsBlank() {
			continue
		}
		raw := strings.TrimSpace(row.Values[zipHeader])
		if raw == "" {
			result.InvalidRows = append(result.InvalidRows, InvalidRow{
				Row:    row.Line,
				RawZip: raw,
				Reason: "Zip is required",
			})
			continue
		}
		zip, ok := census.NormalizeZip(raw)
		if !ok {
			result.InvalidRows = append(result.InvalidRows, InvalidRow{
				Row:    row.Line,
				RawZip: raw,
				Reason: "Zip is invalid format",
			})
			continue
		}

		network, matched := lookup[zip]
		if !matched {
			network = settings.DefaultNetwork
		}
		counts[network]++
		result.MemberAssignments = append(result.MemberAssignments, MemberAssignment{
			Row:     row.Line,
			Zip:     zip,
			Network: network,
			Matched: matched,
		})
	}

	result.TotalMembers = len(result.MemberAssignments)
	if len(result.InvalidRows) > 0 {
		result.CensusIncomplete = true
		result.ReviewRequired = true
	}

	if result.TotalMembers == 0 {
		result.PrimaryNetwork = settings.DefaultNetwork
		result.ReviewRequired = true
		return result, nil
	}

	total := result.TotalMembers
	for network, count := range counts {
		result.CoverageByNetwork[network] = float64(count) / float64(total)
	}

	type tally struct {
		network string
		count   int
	}
	var direct []tally
	for network, count := range counts {
		if network != settings.DefaultNetwork {
			direct = append(direct, tally{network, count})
		}
	}
	sort.Slice(direct, func(i, j int) bool {
		if direct[i].count != direct[j].count {
			return direct[i].count > direct[j].count
		}
		return direct[i].network < direct[j].network
	})

	mixed := 0
	for _, t := range direct {
		// share > 40%  <=>  count/total > 2/5  <=>  5*count > 2*total
		if mixedShareDen*t.count > mixedShareNum*total {
			mixed++
		}
	}

	switch {
	case mixed >= 2:
		result.PrimaryNetwork = MixedNetwork
		result.ReviewRequired = true
	case len(direct) > 0 && result.CoverageByNetwork[direct[0].network] >= settings.CoverageThreshold:
		result.PrimaryNetwork = direct[0].network
	default:
		result.PrimaryNetwork = settings.DefaultNetwork
		result.FallbackUsed = true
	}

	result.CoveragePercentage = result.CoverageByNetwork[result.PrimaryNetwork]
	return result, nil
}
