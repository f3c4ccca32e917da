// Package dedup reconciles freshly fetched records against the persisted
// set. Identity is the key from types.ArticleRecord.IdentityKey; on a key
// collision the incoming record wins, so re-imports refresh content.
package dedup

import (
	"sort"

	"writecorpus/types"
)

// DeletionSet holds identity keys that were soft-deleted. Keys in the set
// are filtered out of every merge so deleted items never resurface on
// re-import.
type DeletionSet map[string]struct{}

// NewDeletionSet builds a set from a list of identity keys.
func NewDeletionSet(keys []string) DeletionSet {
	set := make(DeletionSet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// Add marks an identity key as deleted.
func (s DeletionSet) Add(key string) { s[key] = struct{}{} }

// Contains reports whether key was soft-deleted.
func (s DeletionSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the set as a sorted list for serialization.
func (s DeletionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Merge reconciles incoming against existing and returns the final
// record set: at most one record per identity key, incoming preferred on
// collision, soft-deleted keys dropped, ordered newest-first with undated
// records after dated ones in their original relative order.
func Merge(existing, incoming []types.ArticleRecord, deleted DeletionSet) []types.ArticleRecord {
	byKey := make(map[string]int)
	var merged []types.ArticleRecord

	add := func(record types.ArticleRecord, overwrite bool) {
		key := record.IdentityKey()
		if deleted.Contains(key) {
			return
		}
		if idx, ok := byKey[key]; ok {
			if overwrite {
				merged[idx] = record
			}
			return
		}
		byKey[key] = len(merged)
		merged = append(merged, record)
	}

	for _, record := range existing {
		add(record, false)
	}
	for _, record := range incoming {
		add(record, true)
	}

	sortByDate(merged)
	return merged
}

// sortByDate orders records by published date descending. Records without
// a date keep their relative order and sort after all dated records.
func sortByDate(records []types.ArticleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := records[i].PublishedAt, records[j].PublishedAt
		if (di == "") != (dj == "") {
			return di != ""
		}
		if di == "" {
			return false
		}
		return di > dj // ISO dates compare lexically
	})
}

// ApplyCaps trims the sorted record set to the per-class ceilings:
// maxPlatform for records with a native platform ID, maxWeb for the rest.
// The lowest-priority tail goes first. Trimmed identity keys are returned
// so per-URL metadata tracked beside the set can be cleaned up too.
func ApplyCaps(records []types.ArticleRecord, maxWeb, maxPlatform int) ([]types.ArticleRecord, []string) {
	var kept []types.ArticleRecord
	var trimmed []string
	webCount, platformCount := 0, 0

	for _, record := range records {
		if record.PlatformID != "" {
			if platformCount >= maxPlatform {
				trimmed = append(trimmed, record.IdentityKey())
				continue
			}
			platformCount++
		} else {
			if webCount >= maxWeb {
				trimmed = append(trimmed, record.IdentityKey())
				continue
			}
			webCount++
		}
		kept = append(kept, record)
	}
	return kept, trimmed
}
