package census

// rules.go defines the stable rule-code catalog for census validation.
// Codes are part of the caller contract: downstream UIs filter and group on
// them, so existing codes must never be renumbered or reused. New rules get
// new codes at the end of their series.
//
// Code reference:
//
//	HDR001  Required column could not be resolved to any header
//	HDR002  Explicit header override names a column absent from the file
//	REQ001  First Name is required
//	REQ002  Last Name is required
//	REQ003  DOB is required
//	REQ004  Zip is required
//	REQ005  Gender is required
//	REQ006  Relationship is required
//	REQ007  Enrollment Tier is required
//	FMT001  DOB is not in an accepted date format
//	FMT002  DOB parses but lies in the future
//	FMT003  Zip does not normalize to exactly five digits
//	FMT004  Gender is not M or F after synonym mapping
//	FMT005  Relationship is not E, S or C after synonym mapping
//	FMT006  Enrollment tier is not EE, ES, EC, EF or W after synonym mapping
//	AGE001  Employee is implausibly young (under 16)
//	AGE002  Child dependent is past the age-26 cutoff without waived coverage
//	HH001   Tier implies a spouse but the household has no spouse row
//	HH002   Tier implies a child but the household has no child row
//	HH003   Employee-only tier with dependent rows in the household
//	HH004   Employee rows in one household disagree on enrollment tier
//	HH005   Dependent rows with no employee row in their household

// RuleCode identifies a validation rule. Codes are stable across releases.
type RuleCode string

const (
	RuleMissingColumn       RuleCode = "HDR001"
	RuleMappedColumnMissing RuleCode = "HDR002"

	RuleFirstNameRequired    RuleCode = "REQ001"
	RuleLastNameRequired     RuleCode = "REQ002"
	RuleDOBRequired          RuleCode = "REQ003"
	RuleZipRequired          RuleCode = "REQ004"
	RuleGenderRequired       RuleCode = "REQ005"
	RuleRelationshipRequired RuleCode = "REQ006"
	RuleTierRequired         RuleCode = "REQ007"

	RuleDOBFormat        RuleCode = "FMT001"
	RuleDOBFuture        RuleCode = "FMT002"
	RuleZipFormat        RuleCode = "FMT003"
	RuleGenderEnum       RuleCode = "FMT004"
	RuleRelationshipEnum RuleCode = "FMT005"
	RuleTierEnum         RuleCode = "FMT006"

	RuleEmployeeTooYoung RuleCode = "AGE001"
	RuleDependentOverage RuleCode = "AGE002"

	RuleTierMissingSpouse RuleCode = "HH001"
	RuleTierMissingChild  RuleCode = "HH002"
	RuleTierNoDependents  RuleCode = "HH003"
	RuleTierConflict      RuleCode = "HH004"
	RuleOrphanDependent   RuleCode = "HH005"
)

// requiredRuleByField dispatches empty-value checks to their per-field code.
var requiredRuleByField = map[Field]RuleCode{
	FieldFirstName:    RuleFirstNameRequired,
	FieldLastName:     RuleLastNameRequired,
	FieldDOB:          RuleDOBRequired,
	FieldZip:          RuleZipRequired,
	FieldGender:       RuleGenderRequired,
	FieldRelationship: RuleRelationshipRequired,
	FieldTier:         RuleTierRequired,
}

// Canonical relationship codes.
const (
	RelationshipEmployee = "E"
	RelationshipSpouse   = "S"
	RelationshipChild    = "C"
)

// Canonical enrollment tier codes.
const (
	TierEmployeeOnly   = "EE"
	TierEmployeeSpouse = "ES"
	TierEmployeeChild  = "EC"
	TierFamily         = "EF"
	TierWaived         = "W"
)

// Enumerations checked by the format rules. Values are compared after
// synonym mapping and upper-casing.
var (
	genderCodes = map[string]bool{"M": true, "F": true}

	relationshipCodes = map[string]bool{
		RelationshipEmployee: true,
		RelationshipSpouse:   true,
		RelationshipChild:    true,
	}

	tierCodes = map[string]bool{
		TierEmployeeOnly:   true,
		TierEmployeeSpouse: true,
		TierEmployeeChild:  true,
		TierFamily:         true,
		TierWaived:         true,
	}
)

// Plausibility cutoffs for the age rules. Ages are whole years at the
// evaluation date.
const (
	minEmployeeAge  = 16
	maxDependentAge = 26
)
