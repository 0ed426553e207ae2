package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"classtrack/internal/attendance"
	"classtrack/internal/config"
	"classtrack/internal/livecache"
	"classtrack/internal/queue"
	"classtrack/internal/store"
)

// Worker consumes mark events and keeps the Redis live counters current so
// the admin dashboard can show activity without hitting Postgres.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	// The memory backend lives inside a single process; a standalone worker
	// would consume from its own empty queue and silently do nothing.
	if cfg.QueueBackend == "memory" {
		log.Fatal("QUEUE_BACKEND=memory has no cross-process delivery, run the worker with the redis backend")
	}
	q := queue.NewRedisQueue(redisClient.Client, "classtrack:marks")

	repo := attendance.NewRepository(db.Client)
	live := livecache.New(redisClient.Client)

	if !redisClient.Healthy(ctx) {
		log.Println("WARNING: Redis not reachable, live counters will lag until it recovers")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeAttendanceMarked {
			continue
		}

		id := string(msg.Body)

		record, err := repo.GetRecord(ctx, id)
		if err != nil {
			log.Printf("fetch record %s failed: %v", id, err)
			continue
		}

		if err := live.RecordMark(ctx, record.SessionID, record.MarkedAt); err != nil {
			log.Printf("live counter update for %s failed: %v", id, err)
			continue
		}
		log.Printf("record %s counted for session %s", id, record.SessionID)
	}

	log.Println("worker stopped")
}
