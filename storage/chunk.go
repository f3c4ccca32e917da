package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Chunk field layout: the payload lives in "data" plus numbered overflow
// fields "data_1", "data_2", ... Each chunk repeats the header row so a
// chunk is independently readable; "data_chunked" flags the split and
// "data_chunks" records the total count for reassembly.
const (
	dataField        = "data"
	chunkedFlagField = "data_chunked"
	chunkCountField  = "data_chunks"
)

// EncodeChunked packs the header plus encoded rows into a document whose
// fields each stay at or under chunkSize bytes where row granularity
// allows. Rows are never split: a single row larger than chunkSize
// becomes one oversized field, which Put then rejects against the
// backend ceiling. Rows may contain embedded newlines (quoted CSV), so
// chunk boundaries fall only between rows.
func EncodeChunked(header string, rows []string, chunkSize int) Document {
	doc := Document{}

	var chunks []string
	current := header
	for _, row := range rows {
		if chunkSize > 0 && current != header && len(current)+1+len(row) > chunkSize {
			chunks = append(chunks, current)
			current = header
		}
		current += "\n" + row
	}
	chunks = append(chunks, current)

	doc[dataField] = chunks[0]
	if len(chunks) == 1 {
		return doc
	}
	for i, chunk := range chunks[1:] {
		doc[fmt.Sprintf("%s_%d", dataField, i+1)] = chunk
	}
	doc[chunkedFlagField] = "true"
	doc[chunkCountField] = strconv.Itoa(len(chunks))
	return doc
}

// DecodeChunked reassembles a chunked document into one tabular payload,
// stripping the repeated header row from every chunk after the first.
// The header itself never contains embedded newlines, so the first
// newline of each later chunk is the header boundary.
func DecodeChunked(doc Document) (string, error) {
	payload, ok := doc[dataField]
	if !ok {
		return "", fmt.Errorf("document has no %s field", dataField)
	}
	if doc[chunkedFlagField] != "true" {
		return payload, nil
	}

	count, err := strconv.Atoi(doc[chunkCountField])
	if err != nil || count < 1 {
		return "", fmt.Errorf("invalid chunk count %q", doc[chunkCountField])
	}

	var sb strings.Builder
	sb.WriteString(payload)
	for i := 1; i < count; i++ {
		chunk, ok := doc[fmt.Sprintf("%s_%d", dataField, i)]
		if !ok {
			return "", fmt.Errorf("missing chunk %d of %d", i, count)
		}
		idx := strings.IndexByte(chunk, '\n')
		if idx < 0 {
			continue // header-only chunk carries no rows
		}
		sb.WriteString(chunk[idx:])
	}
	return sb.String(), nil
}
