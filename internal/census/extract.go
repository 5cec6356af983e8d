package census

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Extraction failures. These are the only hard errors in the pipeline;
// everything after a successful Extract is reported as Issues.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file contains no rows")
	ErrMissingHeaderRow  = errors.New("file has no usable header row")
)

// utf8BOM is the byte order mark some spreadsheet exports prepend to CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// delimiterCandidates are tried in order when sniffing a CSV delimiter;
// ties go to the earlier candidate.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// Extract parses raw file bytes into a Table according to the declared
// extension. Supported extensions are csv, xls and xlsx, case-insensitive,
// with or without a leading dot. The bytes are never touched again after
// extraction, so callers may reuse the buffer.
func Extract(data []byte, ext string) (*Table, error) {
	switch normalizeExt(ext) {
	case "csv":
		return extractCSV(data)
	case "xls":
		return extractXLS(data)
	case "xlsx":
		return extractXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// extractCSV decodes delimiter-separated text. The delimiter is sniffed
// from the first non-empty line, a UTF-8 BOM is stripped, and invalid byte
// sequences are replaced rather than failing the whole file.
func extractCSV(data []byte) (*Table, error) {
	text := sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM))

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	// CSV exports often carry decorative blank lines above the real header.
	return tableFromRecords(records, FormatCSV, false)
}

// extractXLSX reads the first worksheet of a modern workbook.
func extractXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return tableFromRecords(records, FormatXLSX, true)
}

// extractXLS reads the first worksheet of a legacy BIFF workbook.
func extractXLS(data []byte) (*Table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	sheet, err := wb.GetSheet(0)
	if err != nil {
		return nil, ErrEmptyFile
	}

	records := make([][]string, 0, sheet.GetNumberRows())
	for i := 0; i < sheet.GetNumberRows(); i++ {
		row, err := sheet.GetRow(i)
		if err != nil {
			// Physically absent row; keep an empty record so later rows
			// keep their line numbers.
			records = append(records, nil)
			continue
		}
		cells := row.GetCols()
		rec := make([]string, len(cells))
		for j, cell := range cells {
			rec[j] = cell.GetString()
		}
		records = append(records, rec)
	}
	return tableFromRecords(records, FormatXLS, true)
}

// tableFromRecords assembles a Table from raw cell rows.
//
// For spreadsheets (firstRowHeader) the first row must be the header row.
// For CSV the first non-empty record is the header and anything above it is
// discarded. Either way the header is logical line 1 and the first data row
// is line 2. Columns whose header cell trims to empty are dropped. When two
// columns share a header name the rightmost column supplies the values.
func tableFromRecords(records [][]string, format Format, firstRowHeader bool) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx := 0
	if firstRowHeader {
		if recordBlank(records[0]) {
			return nil, ErrMissingHeaderRow
		}
	} else {
		headerIdx = -1
		for i, rec := range records {
			if !recordBlank(rec) {
				headerIdx = i
				break
			}
		}
		if headerIdx == -1 {
			return nil, ErrMissingHeaderRow
		}
	}

	var headers []string
	colIndex := make(map[string]int)
	for i, cell := range records[headerIdx] {
		name := canonicalHeader(cell)
		if name == "" {
			continue
		}
		if _, seen := colIndex[name]; !seen {
			headers = append(headers, name)
		}
		colIndex[name] = i
	}
	if len(headers) == 0 {
		return nil, ErrMissingHeaderRow
	}

	rows := make([]Row, 0, len(records)-headerIdx-1)
	for i, rec := range records[headerIdx+1:] {
		values := make(map[string]string, len(headers))
		for _, h := range headers {
			idx := colIndex[h]
			if idx < len(rec) {
				values[h] = rec[idx]
			} else {
				values[h] = ""
			}
		}
		rows = append(rows, Row{Line: i + 2, Values: values})
	}

	return &Table{Headers: headers, Rows: rows, Format: format}, nil
}

// canonicalHeader trims a header cell and collapses internal whitespace,
// including the line breaks Excel likes to embed in wrapped header cells.
func canonicalHeader(cell string) string {
	return strings.Join(strings.Fields(cell), " ")
}

func recordBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sniffDelimiter counts candidate delimiters on the first non-empty line
// and picks the most frequent one. Quoting is ignored on purpose: a header
// line with quoted delimiters inside cell text is vanishingly rare in
// census exports, and the comma fallback keeps the failure mode sane.
func sniffDelimiter(text string) rune {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	best := ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// sanitizeUTF8 replaces invalid byte sequences so encoding/csv never sees
// them. Legacy exports in Windows-1252 survive with replacement runes in
// the odd name cell instead of failing the whole file.
func sanitizeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(unicode.ReplacementChar))
}
