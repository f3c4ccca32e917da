package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"writecorpus/api"
	"writecorpus/cache"
	"writecorpus/config"
	"writecorpus/discover"
	"writecorpus/events"
	"writecorpus/fetch"
	"writecorpus/importer"
	"writecorpus/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	backend, err := initializeBackend()
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}

	client := fetch.NewClient(config.FetchTimeout)
	engine := discover.NewEngine(client, initializeCache())
	store := storage.NewRecordStore(backend)

	producer := initializeEvents()
	if producer != nil {
		defer producer.Close()
	}

	imp := importer.New(engine, client, store, producer)

	r := api.NewRouter(imp)
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET    /api/health")
	log.Println("  POST   /api/import")
	log.Println("  GET    /api/records")
	log.Println("  GET    /api/records/export")
	log.Println("  DELETE /api/records?key=<identity-key>")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// initializeBackend selects the storage backend from STORAGE_BACKEND:
// "memory" (default), "redis", or "s3".
func initializeBackend() (storage.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND"))) {
	case "", "memory":
		log.Println("Using in-memory storage backend")
		return storage.NewMemory(), nil
	case "redis":
		cfg := storage.RedisConfig{
			Addr:     envOr("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB"),
			Prefix:   os.Getenv("REDIS_PREFIX"),
		}
		log.Printf("Using Redis storage backend at %s", cfg.Addr)
		return storage.NewRedis(cfg)
	case "s3":
		cfg := storage.S3Config{
			Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
			Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
			Prefix:       s3Prefix(os.Getenv("S3_PREFIX")),
			UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
		}
		log.Printf("Using S3 storage backend (bucket %q)", cfg.Bucket)
		return storage.NewS3(context.Background(), cfg)
	default:
		log.Printf("Unknown STORAGE_BACKEND %q; falling back to memory", os.Getenv("STORAGE_BACKEND"))
		return storage.NewMemory(), nil
	}
}

// initializeCache returns a Redis-backed discovery cache when REDIS_ADDR
// is set, otherwise an in-process one.
func initializeCache() cache.Cache {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return cache.NewMemory()
	}
	c, err := cache.NewRedis(addr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB"), os.Getenv("REDIS_PREFIX"))
	if err != nil {
		log.Printf("Warning: failed to init Redis cache: %v (using in-process cache)", err)
		return cache.NewMemory()
	}
	return c
}

// initializeEvents returns a Kafka producer when KAFKA_BROKERS is set.
// Publishing is optional; failure to connect disables it with a warning.
func initializeEvents() *events.Producer {
	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		return nil
	}
	producer, err := events.NewProducer(strings.Split(brokers, ","), os.Getenv("KAFKA_TOPIC"))
	if err != nil {
		log.Printf("Warning: failed to init Kafka producer: %v (events disabled)", err)
		return nil
	}
	log.Printf("Publishing import events to Kafka (%s)", brokers)
	return producer
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	return n
}

func s3Prefix(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	if raw == "" {
		return ""
	}
	return raw + "/"
}
