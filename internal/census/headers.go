package census

import (
	"strings"
	"unicode"
)

// DefaultAliases returns the built-in header alias table. Aliases are
// matched under normalized comparison (see normalizeHeader), so spacing,
// case and punctuation variants of an entry match for free. Callers merge
// their own aliases by passing a replacement table to Resolve.
func DefaultAliases() map[Field][]string {
	return map[Field][]string{
		FieldFirstName: {
			"first name", "firstname", "first", "fname",
			"employee first name", "member first name", "given name",
		},
		FieldLastName: {
			"last name", "lastname", "last", "lname", "surname",
			"employee last name", "member last name", "family name",
		},
		FieldDOB: {
			"dob", "date of birth", "birth date", "birthdate", "birthday",
		},
		FieldZip: {
			"zip", "zipcode", "zip code", "postal code", "home zip", "zip5",
		},
		FieldGender: {
			"gender", "sex", "gender code",
		},
		FieldRelationship: {
			"relationship", "relation", "rel", "relationship code",
			"member type", "role",
		},
		FieldTier: {
			"enrollment tier", "tier", "coverage tier", "coverage level",
			"plan tier", "enrollment", "coverage",
		},
		FieldHousehold: {
			"household id", "household", "employee id", "subscriber id",
			"member id",
		},
	}
}

// Resolve maps logical fields onto the extracted headers.
//
// Explicit overrides take absolute precedence: an override that names a
// header absent from the file marks the field unresolved and reports it as
// HDR002, with no silent fallback to alias matching. Override values match
// headers case-insensitively after trimming.
//
// Fields without an override resolve through the alias table: aliases are
// tried in order and the first one that matches a header wins; when an
// alias matches several headers the leftmost header wins. Required fields
// that remain unresolved each get a single row-1 issue.
func Resolve(headers []string, overrides map[Field]string, aliases map[Field][]string) (Resolution, []Issue) {
	if aliases == nil {
		aliases = DefaultAliases()
	}

	byExact := make(map[string]string, len(headers))
	byNorm := make(map[string]string, len(headers))
	for _, h := range headers {
		exact := strings.ToLower(strings.TrimSpace(h))
		if _, ok := byExact[exact]; !ok {
			byExact[exact] = h
		}
		norm := normalizeHeader(h)
		if norm == "" {
			continue
		}
		if _, ok := byNorm[norm]; !ok {
			byNorm[norm] = h
		}
	}

	res := make(Resolution, len(RequiredFields())+1)
	var issues []Issue
	overridden := make(map[Field]bool, len(overrides))

	fields := append(RequiredFields(), FieldHousehold)
	for _, f := range fields {
		if ov, ok := overrides[f]; ok && strings.TrimSpace(ov) != "" {
			overridden[f] = true
			if h, found := byExact[strings.ToLower(strings.TrimSpace(ov))]; found {
				res[f] = h
			} else {
				issues = append(issues, Issue{
					Row:      1,
					Field:    f,
					Code:     RuleMappedColumnMissing,
					Message:  "Mapped column not found: " + ov,
					RawValue: ov,
				})
			}
			continue
		}
		for _, alias := range aliases[f] {
			if h, ok := byNorm[normalizeHeader(alias)]; ok {
				res[f] = h
				break
			}
		}
	}

	for _, f := range RequiredFields() {
		if _, ok := res[f]; ok {
			continue
		}
		if overridden[f] {
			// Already reported as HDR002; one issue per missing field.
			continue
		}
		issues = append(issues, Issue{
			Row:     1,
			Field:   f,
			Code:    RuleMissingColumn,
			Message: "Missing required column",
		})
	}

	return res, issues
}

// normalizeHeader lowers a header and strips every rune that is not a
// letter or digit, so "ZIP_Code", "Zip Code" and "zipcode" all compare
// equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
