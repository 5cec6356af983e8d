package census

import "strings"

// Field identifies a logical census field that the header resolver maps onto
// a physical column. The string value is also the canonical output column
// name for standardized files.
type Field string

const (
	FieldFirstName    Field = "first_name"
	FieldLastName     Field = "last_name"
	FieldDOB          Field = "dob"
	FieldZip          Field = "zip"
	FieldGender       Field = "gender"
	FieldRelationship Field = "relationship"
	FieldTier         Field = "enrollment_tier"

	// FieldHousehold is optional. When it resolves, its value overrides the
	// adjacency heuristic used to group rows for tier reconciliation.
	FieldHousehold Field = "household_id"
)

// RequiredFields returns the fields every standardized output must resolve,
// in canonical output column order.
func RequiredFields() []Field {
	return []Field{
		FieldFirstName,
		FieldLastName,
		FieldDOB,
		FieldZip,
		FieldGender,
		FieldRelationship,
		FieldTier,
	}
}

// Label returns the user-facing field name used in issue messages.
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldDOB:
		return "DOB"
	case FieldZip:
		return "Zip"
	case FieldGender:
		return "Gender"
	case FieldRelationship:
		return "Relationship"
	case FieldTier:
		return "Enrollment Tier"
	case FieldHousehold:
		return "Household ID"
	}
	return string(f)
}

// Format identifies the source file format of an extracted table.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// Row is a single data row keyed by column header.
//
// Line is the 1-based logical line number: the header row is line 1, so the
// first data row is line 2. Blank rows are kept in the table so that later
// rows keep their line numbers; every consumer skips them.
type Row struct {
	Line   int               `json:"line"`
	Values map[string]string `json:"values"`
}

// IsBlank reports whether every populated cell trims to the empty string.
func (r Row) IsBlank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Table is the output of extraction: the ordered header list plus all data
// rows. Columns with an empty header name are dropped entirely.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
	Format  Format   `json:"format"`
}

// Resolution maps logical fields to the column headers they resolved to.
// Built once per file and read-only afterward; absent keys are unresolved.
type Resolution map[Field]string

// Complete reports whether every required field resolved to a header.
func (r Resolution) Complete() bool {
	for _, f := range RequiredFields() {
		if _, ok := r[f]; !ok {
			return false
		}
	}
	return true
}

// Issue is a single rule violation. Row 1 is reserved for file-level and
// header issues; data rows start at 2. JSON field names are part of the
// collaborator contract.
type Issue struct {
	Row         int      `json:"row"`
	Field       Field    `json:"field"`
	Code        RuleCode `json:"rule_code"`
	Message     string   `json:"message"`
	RawValue    string   `json:"raw_value,omitempty"`
	MappedValue string   `json:"mapped_value,omitempty"`
}

// StandardizedRecord is one canonical output row. Values are normalized
// where normalizable and carry the trimmed raw value otherwise, so reviewers
// always see what the source contained.
type StandardizedRecord struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DOB          string `json:"dob"`
	Zip          string `json:"zip"`
	Gender       string `json:"gender"`
	Relationship string `json:"relationship"`
	Tier         string `json:"enrollment_tier"`
}

// FileStatus summarizes a standardization run for callers.
type FileStatus string

const (
	StatusComplete    FileStatus = "Complete"
	StatusIssuesFound FileStatus = "Issues Found"
)

// Report is the full result of the standardization path.
//
// Records is nil unless every required field resolved to a header; this
// guards against emitting an output file missing entire columns. Per-row
// issues never suppress records on their own.
type Report struct {
	Headers    []string             `json:"headers"`
	Resolution Resolution           `json:"resolution"`
	Issues     []Issue              `json:"issues"`
	IssueRows  []int                `json:"issue_rows"`
	Records    []StandardizedRecord `json:"records,omitempty"`
	Status     FileStatus           `json:"status"`
}

// IssueCount returns the total number of issues, header issues included.
func (r *Report) IssueCount() int {
	return len(r.Issues)
}
