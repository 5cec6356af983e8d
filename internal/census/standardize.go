package census

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// OutputColumns is the fixed column order of standardized output files.
var OutputColumns = []string{
	"first_name", "last_name", "dob", "zip",
	"gender", "relationship", "enrollment_tier",
}

// outputSheet is the worksheet standardized XLSX output is written to.
const outputSheet = "Sheet1"

// buildRecords assembles the canonical records. Values that normalized
// cleanly are emitted in canonical form; values that did not are emitted
// as trimmed raw text so the output never hides what the source contained.
func buildRecords(states []*rowState) []StandardizedRecord {
	records := make([]StandardizedRecord, 0, len(states))
	for _, st := range states {
		records = append(records, StandardizedRecord{
			FirstName:    recordValue(st, FieldFirstName),
			LastName:     recordValue(st, FieldLastName),
			DOB:          recordValue(st, FieldDOB),
			Zip:          recordValue(st, FieldZip),
			Gender:       recordValue(st, FieldGender),
			Relationship: recordValue(st, FieldRelationship),
			Tier:         recordValue(st, FieldTier),
		})
	}
	return records
}

func recordValue(st *rowState, f Field) string {
	if v, ok := st.norm[f]; ok {
		return v
	}
	return st.raw[f]
}

func (r StandardizedRecord) values() []string {
	return []string{
		r.FirstName, r.LastName, r.DOB, r.Zip,
		r.Gender, r.Relationship, r.Tier,
	}
}

// WriteCSV renders standardized records as CSV bytes with the fixed header
// row. The output re-extracts cleanly, so standardizing twice is a no-op.
func WriteCSV(records []StandardizedRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(OutputColumns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.values()); err != nil {
			return nil, fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders standardized records as a single-sheet workbook.
func WriteXLSX(records []StandardizedRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range OutputColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(outputSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header cell %s: %w", cell, err)
		}
	}
	for i, rec := range records {
		for j, v := range rec.values() {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("record cell: %w", err)
			}
			if err := f.SetCellValue(outputSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write record cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
