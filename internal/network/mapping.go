// Package network implements ZIP-to-network assignment for employer census
// files: a concurrency-safe reference table mapping 5-digit ZIP codes to
// direct-contract networks, and a coverage engine that recommends a primary
// network with a full audit trail.
package network

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"censuskit/internal/census"
)

// ErrMalformedMapping reports an unusable reference table. It is a setup
// error surfaced once at load time, never per member row.
var ErrMalformedMapping = errors.New("malformed network mapping")

// Mapping is the ZIP-to-network reference table. Safe for concurrent use:
// an operator can Set and Remove entries while assignments read a
// consistent snapshot.
type Mapping struct {
	mu       sync.RWMutex
	networks map[string]string
}

// NewMapping returns an empty table.
func NewMapping() *Mapping {
	return &Mapping{networks: make(map[string]string)}
}

// LoadMapping reads a two-column association list (zip, network) in CSV
// form. A leading header row is recognized and skipped: if the first
// non-blank record's first cell is not a valid ZIP, it is assumed to be a
// header. Extra columns are ignored, blank lines are skipped, and a ZIP
// appearing more than once keeps its last network.
func LoadMapping(r io.Reader) (*Mapping, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMapping, err)
	}

	m := NewMapping()
	headerChecked := false
	for i, rec := range records {
		if mappingRecordBlank(rec) {
			continue
		}
		line := i + 1

		if !headerChecked {
			headerChecked = true
			if _, ok := census.NormalizeZip(rec[0]); !ok {
				continue
			}
		}

		if len(rec) < 2 {
			return nil, fmt.Errorf("%w: line %d needs zip and network columns", ErrMalformedMapping, line)
		}
		zip, ok := census.NormalizeZip(rec[0])
		if !ok {
			return nil, fmt.Errorf("%w: line %d has invalid zip %q", ErrMalformedMapping, line, strings.TrimSpace(rec[0]))
		}
		network := strings.TrimSpace(rec[1])
		if network == "" {
			return nil, fmt.Errorf("%w: line %d is missing a network name", ErrMalformedMapping, line)
		}
		m.networks[zip] = network
	}

	if len(m.networks) == 0 {
		return nil, fmt.Errorf("%w: no zip entries found", ErrMalformedMapping)
	}
	return m, nil
}

func mappingRecordBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Set adds or replaces the network for a ZIP. The ZIP is normalized the
// same way member ZIPs are, so "63101-1234" lands on "63101".
func (m *Mapping) Set(zip, network string) error {
	z, ok := census.NormalizeZip(zip)
	if !ok {
		return fmt.Errorf("%w: invalid zip %q", ErrMalformedMapping, strings.TrimSpace(zip))
	}
	network = strings.TrimSpace(network)
	if network == "" {
		return fmt.Errorf("%w: network name is required", ErrMalformedMapping)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.networks[z] = network
	return nil
}

// Remove deletes a ZIP entry, reporting whether it existed.
func (m *Mapping) Remove(zip string) bool {
	z, ok := census.NormalizeZip(zip)
	if !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.networks[z]; !exists {
		return false
	}
	delete(m.networks, z)
	return true
}

// Lookup returns the network for a normalized 5-digit ZIP.
func (m *Mapping) Lookup(zip string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	network, ok := m.networks[zip]
	return network, ok
}

// Len returns the number of ZIP entries.
func (m *Mapping) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.networks)
}

// Networks returns the distinct network names, sorted.
func (m *Mapping) Networks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(m.networks))
	var names []string
	for _, n := range m.networks {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// snapshot copies the table under one read lock so an assignment run sees
// a consistent view no matter what operators do mid-run.
func (m *Mapping) snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.networks))
	for z, n := range m.networks {
		out[z] = n
	}
	return out
}
