package census

import "strings"

// household collects the rows evaluated together by the tier rules.
type household struct {
	rows []*rowState
}

// groupHouseholds partitions non-blank rows into households.
//
// When the optional household_id field resolved, rows sharing its trimmed,
// lower-cased value group together regardless of position. Rows without a
// usable key fall back to adjacency: an employee row opens a new household
// and subsequent dependent rows attach to the most recent group. Dependents
// appearing before any group form a headless household, which the orphan
// rule flags.
func groupHouseholds(states []*rowState, res Resolution) []*household {
	_, keyed := res[FieldHousehold]

	var groups []*household
	byKey := make(map[string]*household)
	var current *household

	for _, st := range states {
		if keyed {
			if key := strings.ToLower(st.raw[FieldHousehold]); key != "" {
				hh, ok := byKey[key]
				if !ok {
					hh = &household{}
					byKey[key] = hh
					groups = append(groups, hh)
				}
				hh.rows = append(hh.rows, st)
				current = hh
				continue
			}
		}
		if st.norm[FieldRelationship] == RelationshipEmployee {
			current = &household{}
			groups = append(groups, current)
		} else if current == nil {
			current = &household{}
			groups = append(groups, current)
		}
		current.rows = append(current.rows, st)
	}

	return groups
}

// reconcileHouseholds checks each household's enrollment tier against its
// actual membership. Rows whose relationship or tier already failed a
// format rule are ignored here so one bad cell reports once, not twice.
func reconcileHouseholds(states []*rowState, res Resolution) []Issue {
	var issues []Issue

	for _, hh := range groupHouseholds(states, res) {
		var employees []*rowState
		hasSpouse := false
		hasChild := false
		var firstDependent *rowState

		for _, st := range hh.rows {
			switch st.norm[FieldRelationship] {
			case RelationshipEmployee:
				employees = append(employees, st)
			case RelationshipSpouse:
				hasSpouse = true
			case RelationshipChild:
				hasChild = true
			default:
				continue
			}
			if firstDependent == nil && st.norm[FieldRelationship] != RelationshipEmployee {
				firstDependent = st
			}
		}

		if len(employees) == 0 {
			if firstDependent != nil {
				issues = append(issues, Issue{
					Row:         firstDependent.line,
					Field:       FieldRelationship,
					Code:        RuleOrphanDependent,
					Message:     "Dependent has no employee row in household",
					RawValue:    firstDependent.raw[FieldRelationship],
					MappedValue: firstDependent.norm[FieldRelationship],
				})
			}
			continue
		}

		// Tier conflicts first: reconciliation below trusts one tier.
		var lead *rowState
		for _, emp := range employees {
			if tierCodes[emp.norm[FieldTier]] {
				lead = emp
				break
			}
		}
		if lead == nil {
			continue
		}
		for _, emp := range employees {
			tier := emp.norm[FieldTier]
			if emp == lead || !tierCodes[tier] {
				continue
			}
			if tier != lead.norm[FieldTier] {
				issues = append(issues, Issue{
					Row:         emp.line,
					Field:       FieldTier,
					Code:        RuleTierConflict,
					Message:     "Employees in household disagree on enrollment tier",
					RawValue:    emp.raw[FieldTier],
					MappedValue: tier,
				})
			}
		}

		tierIssue := func(code RuleCode, msg string) Issue {
			return Issue{
				Row:         lead.line,
				Field:       FieldTier,
				Code:        code,
				Message:     msg,
				RawValue:    lead.raw[FieldTier],
				MappedValue: lead.norm[FieldTier],
			}
		}

		switch lead.norm[FieldTier] {
		case TierEmployeeSpouse:
			if !hasSpouse {
				issues = append(issues, tierIssue(RuleTierMissingSpouse, "Tier implies a spouse but no spouse row found"))
			}
		case TierEmployeeChild:
			if !hasChild {
				issues = append(issues, tierIssue(RuleTierMissingChild, "Tier implies a child but no child row found"))
			}
		case TierFamily:
			if !hasSpouse {
				issues = append(issues, tierIssue(RuleTierMissingSpouse, "Tier implies a spouse but no spouse row found"))
			}
			if !hasChild {
				issues = append(issues, tierIssue(RuleTierMissingChild, "Tier implies a child but no child row found"))
			}
		case TierEmployeeOnly:
			if hasSpouse || hasChild {
				issues = append(issues, tierIssue(RuleTierNoDependents, "Employee-only tier but household has dependents"))
			}
		}
	}

	return issues
}
