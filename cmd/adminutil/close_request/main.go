package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/renthub-cl/renthub/internal/db"
)

// Force-cancels a maintenance request directly against the database,
// bypassing the API lifecycle checks. For operator use when a request is
// wedged (e.g. provider vanished mid-negotiation).
func main() {
	id := flag.String("id", "", "Maintenance request id to cancel")
	flag.Parse()

	if *id == "" {
		log.Fatalf("usage: go run cmd/adminutil/close_request/main.go -id <request-id>")
	}

	// Initialize DB from environment variables
	db.Init()

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		log.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE maintenance_requests SET status = 'CANCELLED', updated_at = NOW() WHERE id = $1`, *id)
	if err != nil {
		log.Fatalf("failed to cancel request: %v", err)
	}
	if ct.RowsAffected() == 0 {
		log.Fatalf("no maintenance request found with id: %s", *id)
	}

	// Drop any outstanding visit slot so the ledger stays consistent
	if _, err := tx.Exec(ctx, `DELETE FROM visit_schedules WHERE maintenance_id = $1`, *id); err != nil {
		log.Fatalf("failed to clear visit schedule: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("failed to commit: %v", err)
	}

	fmt.Printf("Maintenance request %s cancelled.\n", *id)
}
