package census

import (
	"sort"
	"strings"
	"time"
)

// Options configure a Standardizer. Zero values fall back to the built-in
// alias table, no overrides, empty dictionaries and the real clock.
type Options struct {
	// Aliases replaces the built-in header alias table when non-nil.
	Aliases map[Field][]string
	// Overrides force specific fields onto specific headers and bypass
	// alias matching entirely for those fields.
	Overrides map[Field]string
	// Dicts are the synonym dictionaries applied before enumeration rules.
	Dicts Dictionaries
	// Now supplies the evaluation date for the future-DOB and age rules.
	Now func() time.Time
}

// Standardizer runs the full standardization path over an extracted table:
// resolve headers, normalize and validate every row, reconcile households,
// and build canonical records. A Standardizer is immutable after
// construction and safe for concurrent Run calls.
type Standardizer struct {
	aliases   map[Field][]string
	overrides map[Field]string
	dicts     Dictionaries
	now       func() time.Time
}

func NewStandardizer(opts Options) *Standardizer {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Standardizer{
		aliases:   opts.Aliases,
		overrides: opts.Overrides,
		dicts:     opts.Dicts.normalized(),
		now:       now,
	}
}

// rowState carries one non-blank row through the pipeline: trimmed raw
// values, normalized values, and the issues found so far.
type rowState struct {
	line     int
	raw      map[Field]string
	norm     map[Field]string
	dob      time.Time
	dobValid bool
	issues   []Issue
}

// Run evaluates the whole rule catalog against a table and assembles the
// Report.
//
// When any required field fails to resolve, only the row-1 header issues
// are reported: data rows cannot be meaningfully evaluated against a file
// whose shape is already wrong, and records are withheld for the same
// reason. With headers complete, per-row issues never suppress the
// standardized records; reviewers get both.
func (s *Standardizer) Run(t *Table) *Report {
	res, issues := Resolve(t.Headers, s.overrides, s.aliases)
	report := &Report{
		Headers:    t.Headers,
		Resolution: res,
		Issues:     issues,
		IssueRows:  []int{},
	}

	if !res.Complete() {
		report.Status = StatusIssuesFound
		return report
	}

	today := dateOnly(s.now())

	states := make([]*rowState, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row.IsBlank() {
			continue
		}
		st := s.validateRow(row, res, today)
		states = append(states, st)
		report.Issues = append(report.Issues, st.issues...)
	}

	report.Issues = append(report.Issues, s.agePass(states, today)...)
	report.Issues = append(report.Issues, reconcileHouseholds(states, res)...)

	report.Records = buildRecords(states)
	report.IssueRows = issueRows(report.Issues)
	if len(report.Issues) == 0 {
		report.Status = StatusComplete
	} else {
		report.Status = StatusIssuesFound
	}
	return report
}

// validateRow applies the required and format rules to a single row and
// records the normalized values the later passes need.
func (s *Standardizer) validateRow(row Row, res Resolution, today time.Time) *rowState {
	st := &rowState{
		line: row.Line,
		raw:  make(map[Field]string, len(res)),
		norm: make(map[Field]string, len(res)),
	}

	fields := RequiredFields()
	if _, ok := res[FieldHousehold]; ok {
		fields = append(fields, FieldHousehold)
	}
	for _, f := range fields {
		raw := strings.TrimSpace(row.Values[res[f]])
		st.raw[f] = raw
		if raw == "" {
			if code, required := requiredRuleByField[f]; required {
				st.issues = append(st.issues, Issue{
					Row:     row.Line,
					Field:   f,
					Code:    code,
					Message: f.Label() + " is required",
				})
			}
			continue
		}

		switch f {
		case FieldDOB:
			t, ok := ParseDOB(raw)
			if !ok {
				st.issues = append(st.issues, Issue{
					Row:      row.Line,
					Field:    f,
					Code:     RuleDOBFormat,
					Message:  "DOB is invalid format",
					RawValue: raw,
				})
				continue
			}
			iso := t.Format(isoDate)
			st.norm[f] = iso
			st.dob = t
			st.dobValid = true
			if t.After(today) {
				st.issues = append(st.issues, Issue{
					Row:         row.Line,
					Field:       f,
					Code:        RuleDOBFuture,
					Message:     "DOB cannot be in the future",
					RawValue:    raw,
					MappedValue: iso,
				})
			}

		case FieldZip:
			zip, ok := NormalizeZip(raw)
			if !ok {
				st.issues = append(st.issues, Issue{
					Row:         row.Line,
					Field:       f,
					Code:        RuleZipFormat,
					Message:     "Zip is invalid format",
					RawValue:    raw,
					MappedValue: zip,
				})
				continue
			}
			st.norm[f] = zip

		case FieldGender:
			mapped := NormalizeEnum(raw, s.dicts.Gender)
			st.norm[f] = mapped
			if !genderCodes[mapped] {
				st.issues = append(st.issues, Issue{
					Row:         row.Line,
					Field:       f,
					Code:        RuleGenderEnum,
					Message:     "Gender must be M or F",
					RawValue:    raw,
					MappedValue: mapped,
				})
			}

		case FieldRelationship:
			mapped := NormalizeEnum(raw, s.dicts.Relationship)
			st.norm[f] = mapped
			if !relationshipCodes[mapped] {
				st.issues = append(st.issues, Issue{
					Row:         row.Line,
					Field:       f,
					Code:        RuleRelationshipEnum,
					Message:     "Relationship must be E, S, or C",
					RawValue:    raw,
					MappedValue: mapped,
				})
			}

		case FieldTier:
			mapped := NormalizeEnum(raw, s.dicts.Tier)
			st.norm[f] = mapped
			if !tierCodes[mapped] {
				st.issues = append(st.issues, Issue{
					Row:         row.Line,
					Field:       f,
					Code:        RuleTierEnum,
					Message:     "Enrollment tier must be one of EE, ES, EC, EF, W",
					RawValue:    raw,
					MappedValue: mapped,
				})
			}

		default:
			// Names and the household key have no format rule.
			st.norm[f] = raw
		}
	}

	return st
}

// agePass runs the plausibility rules that need a parsed DOB and a valid
// relationship. Rows whose DOB or relationship already failed a format
// rule are skipped rather than double-reported.
func (s *Standardizer) agePass(states []*rowState, today time.Time) []Issue {
	var issues []Issue
	for _, st := range states {
		if !st.dobValid {
			continue
		}
		age := AgeAt(st.dob, today)
		switch st.norm[FieldRelationship] {
		case RelationshipEmployee:
			if age < minEmployeeAge {
				issues = append(issues, Issue{
					Row:         st.line,
					Field:       FieldDOB,
					Code:        RuleEmployeeTooYoung,
					Message:     "Employee must be at least 16 years old",
					RawValue:    st.raw[FieldDOB],
					MappedValue: st.norm[FieldDOB],
				})
			}
		case RelationshipChild:
			if age > maxDependentAge && st.norm[FieldTier] != TierWaived {
				issues = append(issues, Issue{
					Row:         st.line,
					Field:       FieldDOB,
					Code:        RuleDependentOverage,
					Message:     "Child dependent is over 26 and not waived",
					RawValue:    st.raw[FieldDOB],
					MappedValue: st.norm[FieldDOB],
				})
			}
		}
	}
	return issues
}

// issueRows returns the sorted distinct data-row numbers with at least one
// issue. Row-1 header issues are file-level and excluded.
func issueRows(issues []Issue) []int {
	seen := make(map[int]bool, len(issues))
	rows := make([]int, 0, len(issues))
	for _, is := range issues {
		if is.Row <= 1 || seen[is.Row] {
			continue
		}
		seen[is.Row] = true
		rows = append(rows, is.Row)
	}
	sort.Ints(rows)
	return rows
}

// dateOnly truncates a timestamp to its calendar date in UTC so the
// future-DOB comparison ignores time of day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
