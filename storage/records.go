package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"writecorpus/config"
	"writecorpus/types"
)

// RecordStore layers the tabular and chunked codecs over a Backend to
// persist the merged record set, the soft-deletion set, and the per-URL
// import metadata. Each save replaces the whole document, so readers in
// other runs never see a partial write.
type RecordStore struct {
	backend   Backend
	sizeLimit int
	chunkSize int
}

// NewRecordStore wraps a backend with the configured size ceiling and
// chunk threshold.
func NewRecordStore(backend Backend) *RecordStore {
	return &RecordStore{
		backend:   backend,
		sizeLimit: config.StorageSizeLimit,
		chunkSize: config.ChunkSize,
	}
}

// LoadRecords reads and reassembles the persisted record set. An absent
// document is an empty set, not an error.
func (s *RecordStore) LoadRecords(ctx context.Context) ([]types.ArticleRecord, error) {
	doc, ok, err := s.backend.Get(ctx, config.RecordSetKey)
	if err != nil {
		return nil, fmt.Errorf("loading record set: %w", err)
	}
	if !ok {
		return nil, nil
	}
	payload, err := DecodeChunked(doc)
	if err != nil {
		return nil, fmt.Errorf("reassembling record set: %w", err)
	}
	return DecodeCSV(payload)
}

// SaveRecords serializes, chunks, and writes the record set as one
// document. ErrSizeExceeded propagates when even a single chunk cannot
// fit under the backend ceiling.
func (s *RecordStore) SaveRecords(ctx context.Context, records []types.ArticleRecord) error {
	header, rows, err := EncodeRows(records)
	if err != nil {
		return fmt.Errorf("serializing record set: %w", err)
	}
	doc := EncodeChunked(header, rows, s.chunkSize)
	if err := s.backend.Put(ctx, config.RecordSetKey, doc, s.sizeLimit); err != nil {
		return fmt.Errorf("writing record set: %w", err)
	}
	return nil
}

// SerializedSize reports how many bytes the record set occupies in its
// persisted form; the orchestrator uses this for its byte budget.
func (s *RecordStore) SerializedSize(records []types.ArticleRecord) int {
	payload, err := EncodeCSV(records)
	if err != nil {
		return 0
	}
	return len(payload)
}

// LoadDeletions reads the soft-deleted identity keys.
func (s *RecordStore) LoadDeletions(ctx context.Context) ([]string, error) {
	doc, ok, err := s.backend.Get(ctx, config.DeletionSetKey)
	if err != nil {
		return nil, fmt.Errorf("loading deletion set: %w", err)
	}
	if !ok || strings.TrimSpace(doc[dataField]) == "" {
		return nil, nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(doc[dataField]), &keys); err != nil {
		return nil, fmt.Errorf("decoding deletion set: %w", err)
	}
	return keys, nil
}

// SaveDeletions writes the soft-deleted identity keys.
func (s *RecordStore) SaveDeletions(ctx context.Context, keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	doc := Document{dataField: string(raw)}
	if err := s.backend.Put(ctx, config.DeletionSetKey, doc, s.sizeLimit); err != nil {
		return fmt.Errorf("writing deletion set: %w", err)
	}
	return nil
}

const metaKey = "corpus:meta"

// LoadMeta reads the per-URL import metadata (identity key → last import
// date) tracked beside the record set.
func (s *RecordStore) LoadMeta(ctx context.Context) (map[string]string, error) {
	doc, ok, err := s.backend.Get(ctx, metaKey)
	if err != nil {
		return nil, fmt.Errorf("loading import metadata: %w", err)
	}
	if !ok || strings.TrimSpace(doc[dataField]) == "" {
		return map[string]string{}, nil
	}
	meta := make(map[string]string)
	if err := json.Unmarshal([]byte(doc[dataField]), &meta); err != nil {
		return nil, fmt.Errorf("decoding import metadata: %w", err)
	}
	return meta, nil
}

// SaveMeta writes the per-URL import metadata.
func (s *RecordStore) SaveMeta(ctx context.Context, meta map[string]string) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	doc := Document{dataField: string(raw)}
	if err := s.backend.Put(ctx, metaKey, doc, s.sizeLimit); err != nil {
		return fmt.Errorf("writing import metadata: %w", err)
	}
	return nil
}
