package census

import "strings"

// DefaultSampleSize is the number of example values collected per header
// when the caller does not say otherwise.
const DefaultSampleSize = 3

// HeaderPreview pairs a detected column with its first non-blank values,
// giving mapping UIs something concrete to show next to each header.
type HeaderPreview struct {
	Header  string   `json:"header"`
	Samples []string `json:"samples"`
}

// Preview collects up to sampleSize non-blank values per header, in row
// order. Headers whose column is entirely blank get an empty sample list,
// never nil, so JSON consumers always see an array.
func Preview(t *Table, sampleSize int) []HeaderPreview {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	previews := make([]HeaderPreview, 0, len(t.Headers))
	for _, h := range t.Headers {
		p := HeaderPreview{Header: h, Samples: []string{}}
		for _, row := range t.Rows {
			if len(p.Samples) == sampleSize {
				break
			}
			if v := strings.TrimSpace(row.Values[h]); v != "" {
				p.Samples = append(p.Samples, v)
			}
		}
		previews = append(previews, p)
	}
	return previews
}
