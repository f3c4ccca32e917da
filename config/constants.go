package config

import "time"

// Fetch Orchestration Constants
const (
	// FetchConcurrency is the number of pages fetched in parallel per batch
	FetchConcurrency = 3

	// FetchTimeout bounds a single page fetch + extraction attempt
	FetchTimeout = 20 * time.Second

	// FetchRetries is how many times a retryable fetch failure is reattempted
	FetchRetries = 2

	// BatchDelay is the pause between fetch batches to respect remote rate limits
	BatchDelay = 1 * time.Second

	// MaxResponseBytes skips any page body larger than this (non-retryable)
	MaxResponseBytes = 512 * 1024
)

// Import Budget Constants
const (
	// MaxImportURLs caps how many discovered URLs one run will fetch
	MaxImportURLs = 50

	// ImportByteBudget stops scheduling batches once the serialized
	// record set would exceed this many bytes
	ImportByteBudget = 900 * 1024

	// MaxErrorSample caps how many per-item failure reasons a summary reports
	MaxErrorSample = 8
)

// Record Set Constants
const (
	// MaxWebArticles is the post-merge cap for records scraped from web sources
	MaxWebArticles = 300

	// MaxPlatformPosts is the post-merge cap for records with a native platform ID
	MaxPlatformPosts = 50
)

// Storage Constants
const (
	// StorageSizeLimit is the backend's hard per-field ceiling (~1 MiB)
	StorageSizeLimit = 1024 * 1024

	// ChunkSize is the payload size the chunked codec splits documents into,
	// kept under StorageSizeLimit with headroom for key overhead
	ChunkSize = 900 * 1024

	// RecordSetKey is the storage key the merged record set lives under
	RecordSetKey = "corpus:records"

	// DeletionSetKey is the storage key for soft-deleted identity keys
	DeletionSetKey = "corpus:deleted"
)

// Discovery Constants
const (
	// MaxListingPages bounds numbered pagination per listing path
	MaxListingPages = 5

	// MaxChildSitemaps bounds recursion into sitemap-index children
	MaxChildSitemaps = 3

	// UserAgent is sent on every outbound request
	UserAgent = "writecorpus/1.0 (+https://writecorpus.app/bot)"
)
