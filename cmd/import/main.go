// Command import runs a one-shot import from the command line: discover,
// fetch, and persist articles for one seed URL, then print a summary.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"writecorpus/cache"
	"writecorpus/config"
	"writecorpus/discover"
	"writecorpus/fetch"
	"writecorpus/importer"
	"writecorpus/storage"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	seedURL := flag.String("url", "", "seed URL of the site to import (required)")
	count := flag.Int("count", config.MaxImportURLs, "maximum number of articles to import")
	store := flag.String("store", "memory", "storage backend: memory, redis, or s3")
	export := flag.Bool("export", false, "print the merged record set as CSV after the import")
	flag.Parse()

	if *seedURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	backend, err := initializeBackend(*store)
	if err != nil {
		log.Fatalf("Failed to initialize %s backend: %v", *store, err)
	}

	client := fetch.NewClient(config.FetchTimeout)
	engine := discover.NewEngine(client, cache.NewMemory())
	imp := importer.New(engine, client, storage.NewRecordStore(backend), nil)

	ctx := context.Background()
	summary, err := imp.ImportFromURL(ctx, *seedURL, *count)
	if err != nil && !errors.Is(err, importer.ErrStorageFull) {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("=== Import Summary ===")
	log.Printf("Imported:  %d", summary.RecordsImported)
	log.Printf("Failed:    %d", summary.RecordsFailed)
	log.Printf("Truncated: %v", summary.Truncated)
	for _, reason := range summary.Errors {
		log.Printf("  error: %s", reason)
	}
	if errors.Is(err, importer.ErrStorageFull) {
		log.Printf("Warning: %v", err)
	}

	if *export {
		payload, err := imp.ExportCSV(ctx)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		os.Stdout.WriteString(payload)
	}
}

func initializeBackend(name string) (storage.Backend, error) {
	switch strings.ToLower(name) {
	case "redis":
		return storage.NewRedis(storage.RedisConfig{
			Addr:     envOr("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			Prefix:   os.Getenv("REDIS_PREFIX"),
		})
	case "s3":
		return storage.NewS3(context.Background(), storage.S3Config{
			Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
			Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
			UsePathStyle: strings.EqualFold(os.Getenv("S3_USE_PATH_STYLE"), "true"),
		})
	default:
		return storage.NewMemory(), nil
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
