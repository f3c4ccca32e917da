package storage

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"writecorpus/types"
)

// fixedColumns is the tabular export column order. Extra columns carry
// the platform ID, the inferred-date flag, and any raw fields observed
// during parsing, so decode(encode(set)) loses nothing.
var fixedColumns = []string{"Date", "Title", "Content", "Category", "Tags", "URL"}

const (
	platformIDColumn   = "PlatformId"
	dateInferredColumn = "DateInferred"
)

// EncodeRows serializes records into a header line plus one encoded CSV
// row per record. Quoting follows RFC 4180: fields containing commas,
// quotes, or newlines are quoted with internal quotes doubled, and
// embedded newlines survive inside quoted fields.
func EncodeRows(records []types.ArticleRecord) (header string, rows []string, err error) {
	extras := extraColumns(records)
	columns := append(append([]string{}, fixedColumns...), extras...)

	header, err = encodeLine(columns)
	if err != nil {
		return "", nil, err
	}

	rows = make([]string, 0, len(records))
	for _, r := range records {
		row := []string{r.PublishedAt, r.Title, r.Body, r.Category, r.TagString(), r.SourceURL}
		for _, col := range extras {
			switch col {
			case platformIDColumn:
				row = append(row, r.PlatformID)
			case dateInferredColumn:
				if r.DateInferred {
					row = append(row, "true")
				} else {
					row = append(row, "")
				}
			default:
				row = append(row, r.RawFields[col])
			}
		}
		line, err := encodeLine(row)
		if err != nil {
			return "", nil, err
		}
		rows = append(rows, line)
	}
	return header, rows, nil
}

// EncodeCSV is the single-string form of EncodeRows, used for export.
func EncodeCSV(records []types.ArticleRecord) (string, error) {
	header, rows, err := EncodeRows(records)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return header, nil
	}
	return header + "\n" + strings.Join(rows, "\n"), nil
}

// DecodeCSV parses a tabular payload back into records. Unknown columns
// land in RawFields; the reserved extra columns map back to their struct
// fields.
func DecodeCSV(payload string) ([]types.ArticleRecord, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(payload))
	reader.FieldsPerRecord = -1
	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing tabular payload: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	columns := lines[0]
	records := make([]types.ArticleRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		var r types.ArticleRecord
		for i, value := range line {
			if i >= len(columns) {
				break
			}
			switch columns[i] {
			case "Date":
				r.PublishedAt = value
			case "Title":
				r.Title = value
			case "Content":
				r.Body = value
			case "Category":
				r.Category = value
			case "Tags":
				if value != "" {
					r.Tags = strings.Split(value, ",")
				}
			case "URL":
				r.SourceURL = value
			case platformIDColumn:
				r.PlatformID = value
			case dateInferredColumn:
				r.DateInferred = value == "true"
			default:
				if value != "" {
					if r.RawFields == nil {
						r.RawFields = make(map[string]string)
					}
					r.RawFields[columns[i]] = value
				}
			}
		}
		records = append(records, r)
	}
	return records, nil
}

// extraColumns computes the union of non-fixed columns across records,
// reserved columns first, raw field names sorted after.
func extraColumns(records []types.ArticleRecord) []string {
	var extras []string
	hasPlatform, hasInferred := false, false
	rawKeys := make(map[string]struct{})

	for _, r := range records {
		if r.PlatformID != "" {
			hasPlatform = true
		}
		if r.DateInferred {
			hasInferred = true
		}
		for key := range r.RawFields {
			rawKeys[key] = struct{}{}
		}
	}

	if hasPlatform {
		extras = append(extras, platformIDColumn)
	}
	if hasInferred {
		extras = append(extras, dateInferredColumn)
	}
	sorted := make([]string, 0, len(rawKeys))
	for key := range rawKeys {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)
	return append(extras, sorted...)
}

// encodeLine renders one CSV record without a trailing newline.
func encodeLine(fields []string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(fields); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}
