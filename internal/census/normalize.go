package census

import (
	"strings"
	"time"
)

// Dictionaries hold caller-supplied synonym maps consulted before the
// enumeration rules run. Keys are matched against the lower-cased raw
// value; results are upper-cased on the way out. A nil map disables
// remapping for that field, leaving trim-and-upper-case as the only
// normalization.
type Dictionaries struct {
	Gender       map[string]string
	Relationship map[string]string
	Tier         map[string]string
}

// normalized returns a copy with every key lower-cased and trimmed, so
// lookups stay case-insensitive no matter how the caller built the maps.
func (d Dictionaries) normalized() Dictionaries {
	return Dictionaries{
		Gender:       lowerKeys(d.Gender),
		Relationship: lowerKeys(d.Relationship),
		Tier:         lowerKeys(d.Tier),
	}
}

func lowerKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

// NormalizeEnum trims raw, remaps it through dict when the lower-cased
// value is present, and upper-cases the result. The returned value is what
// the enumeration rules check and what standardized output carries.
func NormalizeEnum(raw string, dict map[string]string) string {
	v := strings.TrimSpace(raw)
	if mapped, ok := dict[strings.ToLower(v)]; ok {
		v = mapped
	}
	return strings.ToUpper(strings.TrimSpace(v))
}

// NormalizeZip reduces a raw value to a canonical 5-digit ZIP.
//
// A value already shaped like ZIP+4 (five digits, one separator, four
// digits) keeps its leading five digits. Otherwise every non-digit is
// stripped and the result is valid only if exactly five digits remain;
// nine digits without a separator are NOT treated as ZIP+4, since that is
// far more often a truncated SSN pasted into the wrong column. The digit
// string is returned either way so issues can show what was extracted.
func NormalizeZip(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if isZipPlus4(v) {
		return v[:5], true
	}
	digits := digitsOnly(v)
	return digits, len(digits) == 5
}

func isZipPlus4(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < 5; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	if isDigit(s[5]) {
		return false
	}
	for i := 6; i < 10; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// isoDate is the canonical DOB output layout.
const isoDate = "2006-01-02"

// dobLayouts are the accepted date-of-birth input formats, tried in order.
// The unpadded reference layouts also accept zero-padded components, and
// the trailing layout absorbs the midnight timestamps spreadsheet exports
// attach to plain dates.
var dobLayouts = []string{
	"1/2/2006",
	"2006-1-2",
	"2006/1/2",
	"2006-1-2 15:04:05",
}

// ParseDOB parses a raw value into a calendar date, discarding any time
// component. ok is false when no accepted layout matches; impossible
// calendar dates such as February 30th fail rather than rolling over.
func ParseDOB(raw string) (time.Time, bool) {
	v := strings.TrimSpace(raw)
	for _, layout := range dobLayouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// AgeAt returns whole years between dob and the reference date, the way a
// birthday card counts them.
func AgeAt(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}
