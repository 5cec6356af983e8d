package census

import (
	"testing"
	"time"
)

// censusHeaders is the canonical header set used across validation tests.
var censusHeaders = []string{
	"First Name", "Last Name", "DOB", "Zip",
	"Gender", "Relationship", "Enrollment Tier",
}

// testNow pins the evaluation date so age and future-DOB rules are stable.
func testNow() time.Time {
	return time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
}

// makeTable builds a Table directly from cell rows, bypassing extraction.
func makeTable(headers []string, rows ...[]string) *Table {
	t := &Table{Headers: headers, Format: FormatCSV}
	for i, cells := range rows {
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(cells) {
				values[h] = cells[j]
			} else {
				values[h] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Line: i + 2, Values: values})
	}
	return t
}

func newTestStandardizer(opts Options) *Standardizer {
	if opts.Now == nil {
		opts.Now = testNow
	}
	return NewStandardizer(opts)
}

// findIssues returns the issues carrying the given rule code.
func findIssues(issues []Issue, code RuleCode) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.Code == code {
			out = append(out, is)
		}
	}
	return out
}

// ----------------------------------------------------------------------------
// Run: Clean File Tests
// ----------------------------------------------------------------------------

func TestRun_CleanFile(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "ES"},
		[]string{"Mark", "Doe", "3/14/1970", "63011", "M", "S", "ES"},
		[]string{"Amy", "Smith", "1990-04-12", "45202-1111", "F", "E", "EE"},
	)

	report := newTestStandardizer(Options{}).Run(table)

	if report.Status != StatusComplete {
		t.Fatalf("Status = %q, want %q (issues: %v)", report.Status, StatusComplete, report.Issues)
	}
	if report.IssueCount() != 0 {
		t.Fatalf("IssueCount = %d, want 0 (%v)", report.IssueCount(), report.Issues)
	}
	if len(report.IssueRows) != 0 {
		t.Errorf("IssueRows = %v, want empty", report.IssueRows)
	}
	if len(report.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(report.Records))
	}

	first := report.Records[0]
	if first.DOB != "1968-01-26" {
		t.Errorf("Records[0].DOB = %q, want %q", first.DOB, "1968-01-26")
	}
	if first.FirstName != "Jane" || first.LastName != "Doe" {
		t.Errorf("Records[0] name = %q %q, want Jane Doe", first.FirstName, first.LastName)
	}

	third := report.Records[2]
	if third.Zip != "45202" {
		t.Errorf("Records[2].Zip = %q, want %q (ZIP+4 truncation)", third.Zip, "45202")
	}
}

// TestRun_DOBTimestampStandardizes pins the spreadsheet-export case: a
// midnight timestamp standardizes to the bare date.
func TestRun_DOBTimestampStandardizes(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1968-01-26 00:00:00", "63011", "F", "E", "EE"},
	)

	report := newTestStandardizer(Options{}).Run(table)

	if report.IssueCount() != 0 {
		t.Fatalf("IssueCount = %d, want 0 (%v)", report.IssueCount(), report.Issues)
	}
	if got := report.Records[0].DOB; got != "1968-01-26" {
		t.Errorf("DOB = %q, want %q", got, "1968-01-26")
	}
}

// ----------------------------------------------------------------------------
// Run: Required Field Tests
// ----------------------------------------------------------------------------

func TestRun_RequiredFields(t *testing.T) {
	// First Name present so the row is not blank; everything else empty.
	table := makeTable(censusHeaders,
		[]string{"Jane", "", "  ", "", "", "", ""},
	)

	report := newTestStandardizer(Options{}).Run(table)

	wantCodes := []RuleCode{
		RuleLastNameRequired, RuleDOBRequired, RuleZipRequired,
		RuleGenderRequired, RuleRelationshipRequired, RuleTierRequired,
	}
	if report.IssueCount() != len(wantCodes) {
		t.Fatalf("IssueCount = %d, want %d (%v)", report.IssueCount(), len(wantCodes), report.Issues)
	}
	for i, want := range wantCodes {
		is := report.Issues[i]
		if is.Code != want {
			t.Errorf("Issues[%d].Code = %s, want %s", i, is.Code, want)
		}
		if is.Row != 2 {
			t.Errorf("Issues[%d].Row = %d, want 2", i, is.Row)
		}
	}

	// Messages name the field the way reviewers see it.
	if got := report.Issues[0].Message; got != "Last Name is required" {
		t.Errorf("message = %q, want %q", got, "Last Name is required")
	}
}

func TestRun_WhitespaceOnlyValueIsMissing(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "   ", "F", "E", "EE"},
	)

	report := newTestStandardizer(Options{}).Run(table)

	zipIssues := findIssues(report.Issues, RuleZipRequired)
	if len(zipIssues) != 1 {
		t.Fatalf("zip required issues = %d, want 1 (%v)", len(zipIssues), report.Issues)
	}
}

// ----------------------------------------------------------------------------
// Run: Format Rule Tests
// ----------------------------------------------------------------------------

func TestRun_FormatRules(t *testing.T) {
	tests := []struct {
		name       string
		rows       [][]string
		wantCode   RuleCode
		wantField  Field
		wantRaw    string
		wantMapped string
	}{
		{
			name: "unparseable dob",
			rows: [][]string{
				{"Jane", "Doe", "sometime", "63011", "F", "E", "EE"},
			},
			wantCode:  RuleDOBFormat,
			wantField: FieldDOB,
			wantRaw:   "sometime",
		},
		{
			name: "future dob",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "ES"},
				{"Mark", "Doe", "1/1/2030", "63011", "M", "S", "ES"},
			},
			wantCode:   RuleDOBFuture,
			wantField:  FieldDOB,
			wantRaw:    "1/1/2030",
			wantMapped: "2030-01-01",
		},
		{
			name: "invalid zip",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "123", "F", "E", "EE"},
			},
			wantCode:   RuleZipFormat,
			wantField:  FieldZip,
			wantRaw:    "123",
			wantMapped: "123",
		},
		{
			name: "invalid gender",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "Q", "E", "EE"},
			},
			wantCode:   RuleGenderEnum,
			wantField:  FieldGender,
			wantRaw:    "Q",
			wantMapped: "Q",
		},
		{
			name: "invalid relationship",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "F", "QQ", "EE"},
			},
			wantCode:   RuleRelationshipEnum,
			wantField:  FieldRelationship,
			wantRaw:    "QQ",
			wantMapped: "QQ",
		},
		{
			name: "invalid tier",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "GOLD"},
			},
			wantCode:   RuleTierEnum,
			wantField:  FieldTier,
			wantRaw:    "GOLD",
			wantMapped: "GOLD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := newTestStandardizer(Options{}).Run(makeTable(censusHeaders, tt.rows...))

			if report.IssueCount() != 1 {
				t.Fatalf("IssueCount = %d, want 1 (%v)", report.IssueCount(), report.Issues)
			}
			is := report.Issues[0]
			if is.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", is.Code, tt.wantCode)
			}
			if is.Field != tt.wantField {
				t.Errorf("Field = %s, want %s", is.Field, tt.wantField)
			}
			if is.RawValue != tt.wantRaw {
				t.Errorf("RawValue = %q, want %q", is.RawValue, tt.wantRaw)
			}
			if tt.wantMapped != "" && is.MappedValue != tt.wantMapped {
				t.Errorf("MappedValue = %q, want %q", is.MappedValue, tt.wantMapped)
			}
		})
	}
}

// TestRun_CaseInsensitiveEnums verifies lower-cased codes normalize before
// the enum check rather than failing it.
func TestRun_CaseInsensitiveEnums(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "63011", "f", "e", "ee"},
	)

	report := newTestStandardizer(Options{}).Run(table)

	if report.IssueCount() != 0 {
		t.Fatalf("IssueCount = %d, want 0 (%v)", report.IssueCount(), report.Issues)
	}
	rec := report.Records[0]
	if rec.Gender != "F" || rec.Relationship != "E" || rec.Tier != "EE" {
		t.Errorf("record = %q/%q/%q, want F/E/EE", rec.Gender, rec.Relationship, rec.Tier)
	}
}

func TestRun_SynonymDictionaries(t *testing.T) {
	opts := Options{
		Dicts: Dictionaries{
			Gender:       map[string]string{"female": "F"},
			Relationship: map[string]string{"Employee": "E"},
			Tier:         map[string]string{"employee only": "EE"},
		},
	}
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "63011", "Female", "EMPLOYEE", "Employee Only"},
	)

	report := newTestStandardizer(opts).Run(table)

	if report.IssueCount() != 0 {
		t.Fatalf("IssueCount = %d, want 0 (%v)", report.IssueCount(), report.Issues)
	}
	rec := report.Records[0]
	if rec.Gender != "F" || rec.Relationship != "E" || rec.Tier != "EE" {
		t.Errorf("record = %q/%q/%q, want F/E/EE", rec.Gender, rec.Relationship, rec.Tier)
	}
}

// ----------------------------------------------------------------------------
// Run: Age Rule Tests
// ----------------------------------------------------------------------------

func TestRun_AgeRules(t *testing.T) {
	tests := []struct {
		name      string
		rows      [][]string
		wantCode  RuleCode
		wantCount int
	}{
		{
			name: "employee under sixteen",
			rows: [][]string{
				{"Tim", "Doe", "1/1/2015", "63011", "M", "E", "EE"},
			},
			wantCode:  RuleEmployeeTooYoung,
			wantCount: 1,
		},
		{
			name: "employee exactly sixteen is fine",
			rows: [][]string{
				{"Tim", "Doe", "6/15/2009", "63011", "M", "E", "EE"},
			},
			wantCode:  RuleEmployeeTooYoung,
			wantCount: 0,
		},
		{
			name: "child over twenty-six",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "EC"},
				{"Paul", "Doe", "1/1/1990", "63011", "M", "C", "EC"},
			},
			wantCode:  RuleDependentOverage,
			wantCount: 1,
		},
		{
			name: "child exactly twenty-six is fine",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "EC"},
				{"Paul", "Doe", "6/15/1999", "63011", "M", "C", "EC"},
			},
			wantCode:  RuleDependentOverage,
			wantCount: 0,
		},
		{
			name: "waived child over twenty-six is fine",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "EC"},
				{"Paul", "Doe", "1/1/1990", "63011", "M", "C", "W"},
			},
			wantCode:  RuleDependentOverage,
			wantCount: 0,
		},
		{
			name: "spouse age is not checked",
			rows: [][]string{
				{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "ES"},
				{"Kid", "Doe", "1/1/2015", "63011", "M", "S", "ES"},
			},
			wantCode:  RuleEmployeeTooYoung,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := newTestStandardizer(Options{}).Run(makeTable(censusHeaders, tt.rows...))
			got := findIssues(report.Issues, tt.wantCode)
			if len(got) != tt.wantCount {
				t.Errorf("%s issues = %d, want %d (all: %v)", tt.wantCode, len(got), tt.wantCount, report.Issues)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Run: Header Problem Tests
// ----------------------------------------------------------------------------

func TestRun_HeaderProblemsSuppressRowEvaluation(t *testing.T) {
	// No gender column. The data rows are full of problems, but none may
	// be reported: the file shape is wrong, so rows are unevaluable.
	headers := []string{"First Name", "Last Name", "DOB", "Zip", "Relationship", "Enrollment Tier"}
	table := makeTable(headers,
		[]string{"", "", "garbage", "12", "X", "NOPE"},
	)

	report := newTestStandardizer(Options{}).Run(table)

	if report.Status != StatusIssuesFound {
		t.Errorf("Status = %q, want %q", report.Status, StatusIssuesFound)
	}
	if report.IssueCount() != 1 {
		t.Fatalf("IssueCount = %d, want 1 (%v)", report.IssueCount(), report.Issues)
	}
	is := report.Issues[0]
	if is.Row != 1 || is.Code != RuleMissingColumn || is.Field != FieldGender {
		t.Errorf("issue = %+v, want row-1 %s for gender", is, RuleMissingColumn)
	}

	if report.Records != nil {
		t.Errorf("Records = %v, want nil when headers are unresolved", report.Records)
	}
	if len(report.IssueRows) != 0 {
		t.Errorf("IssueRows = %v, want empty", report.IssueRows)
	}
}

func TestRun_RecordsEmittedDespiteRowIssues(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "EE"},
		[]string{"John", "Smith", "bad-date", "999", "M", "E", "EE"},
	)

	report := newTestStandardizer(Options{}).Run(table)

	if report.Status != StatusIssuesFound {
		t.Errorf("Status = %q, want %q", report.Status, StatusIssuesFound)
	}
	if len(report.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2 (row issues must not suppress output)", len(report.Records))
	}

	// Unparseable values pass through as-is for review.
	if got := report.Records[1].DOB; got != "bad-date" {
		t.Errorf("Records[1].DOB = %q, want %q", got, "bad-date")
	}
	if got := report.Records[1].Zip; got != "999" {
		t.Errorf("Records[1].Zip = %q, want %q", got, "999")
	}
}

// ----------------------------------------------------------------------------
// Run: Row Bookkeeping Tests
// ----------------------------------------------------------------------------

func TestRun_IssueRowsSortedAndDistinct(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "EE"},
		[]string{"", "", "bad", "63011", "F", "E", "EE"}, // line 3: several issues
		[]string{"Amy", "Smith", "1990-04-12", "45202", "F", "E", "EE"},
		[]string{"John", "Smith", "1991-02-03", "12", "M", "E", "EE"}, // line 5
	)

	report := newTestStandardizer(Options{}).Run(table)

	want := []int{3, 5}
	if len(report.IssueRows) != len(want) {
		t.Fatalf("IssueRows = %v, want %v", report.IssueRows, want)
	}
	for i, row := range want {
		if report.IssueRows[i] != row {
			t.Errorf("IssueRows[%d] = %d, want %d", i, report.IssueRows[i], row)
		}
	}
}

func TestRun_BlankRowsSkipped(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "EE"},
		[]string{"", "", "", "", "", "", ""},
		[]string{"John", "Smith", "1990-04-12", "45202", "M", "E", "EE"},
	)

	report := newTestStandardizer(Options{}).Run(table)

	if report.IssueCount() != 0 {
		t.Fatalf("IssueCount = %d, want 0 (%v)", report.IssueCount(), report.Issues)
	}
	if len(report.Records) != 2 {
		t.Errorf("len(Records) = %d, want 2 (blank row skipped)", len(report.Records))
	}
}

func TestRun_LineNumbersSurviveBlankRows(t *testing.T) {
	table := makeTable(censusHeaders,
		[]string{"Jane", "Doe", "1/26/1968", "63011", "F", "E", "EE"},
		[]string{"", "", "", "", "", "", ""},
		[]string{"John", "Smith", "1990-04-12", "12", "M", "E", "EE"}, // bad zip, line 4
	)

	report := newTestStandardizer(Options{}).Run(table)

	zipIssues := findIssues(report.Issues, RuleZipFormat)
	if len(zipIssues) != 1 {
		t.Fatalf("zip issues = %d, want 1 (%v)", len(zipIssues), report.Issues)
	}
	if zipIssues[0].Row != 4 {
		t.Errorf("issue row = %d, want 4", zipIssues[0].Row)
	}
}
