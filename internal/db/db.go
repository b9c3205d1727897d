package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres
func Init() {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	// Ensure tables used by handlers exist (idempotent)
	ensureUsersTable()
	ensurePropertiesTable()
	ensureProvidersTable()
	ensureMaintenanceTables()
	ensureNotificationsTable()
	ensureMessagesTable()
}

// ensureUsersTable creates users if missing and keeps the role constraint
// aligned with the roles the handlers issue tokens for.
func ensureUsersTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'tenant',
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		log.Printf("failed to create users table: %v", err)
		return
	}

	_, _ = Conn.Exec(ctx, `
        ALTER TABLE users ADD COLUMN IF NOT EXISTS phone TEXT;
        ALTER TABLE users ADD COLUMN IF NOT EXISTS avatar_url TEXT;
    `)

	_, _ = Conn.Exec(ctx, `ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
	_, err = Conn.Exec(ctx, `
        ALTER TABLE users
        ADD CONSTRAINT users_role_check
        CHECK (role IN ('tenant', 'owner', 'broker', 'admin', 'provider'))`)
	if err != nil {
		log.Printf("failed to update users role constraint: %v", err)
	}
}

// ensurePropertiesTable links a property to the owner and broker accounts
// that get notified on provider moves.
func ensurePropertiesTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS properties (
            id TEXT PRIMARY KEY,
            owner_id UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            broker_id UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            address TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		log.Printf("failed to create properties table: %v", err)
	}
}

// ensureProvidersTable creates the provider directory table.
func ensureProvidersTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS providers (
            id UUID PRIMARY KEY,
            user_id UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            business_name TEXT NOT NULL,
            specialty TEXT,
            phone TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_providers_user ON providers(user_id);
    `)
	if err != nil {
		log.Printf("failed to create providers table: %v", err)
	}
}

// ensureMaintenanceTables creates maintenance_requests and the single-slot
// visit_schedules table. The UNIQUE constraint on maintenance_id is what
// holds the at-most-one-proposal invariant at the storage layer too.
func ensureMaintenanceTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS maintenance_requests (
            id UUID PRIMARY KEY,
            property_id TEXT NOT NULL,
            requested_by TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT,
            category TEXT,
            priority TEXT NOT NULL DEFAULT 'MEDIUM',
            status TEXT NOT NULL DEFAULT 'OPEN',
            assigned_provider_id UUID NULL,
            scheduled_date TEXT,
            scheduled_time TEXT,
            visit_duration INTEGER,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_maintenance_status ON maintenance_requests(status);
        CREATE INDEX IF NOT EXISTS idx_maintenance_provider ON maintenance_requests(assigned_provider_id);
    `)
	if err != nil {
		log.Printf("failed to create maintenance_requests table: %v", err)
		return
	}

	_, _ = Conn.Exec(ctx, `ALTER TABLE maintenance_requests DROP CONSTRAINT IF EXISTS maintenance_requests_status_check`)
	_, err = Conn.Exec(ctx, `
        ALTER TABLE maintenance_requests
        ADD CONSTRAINT maintenance_requests_status_check
        CHECK (status IN (
            'OPEN', 'ASSIGNED', 'QUOTE_PENDING', 'QUOTE_APPROVED',
            'PENDING_CONFIRMATION', 'SCHEDULED', 'IN_PROGRESS',
            'COMPLETED', 'REJECTED', 'CANCELLED'
        ))`)
	if err != nil {
		log.Printf("failed to update maintenance status constraint: %v", err)
	}

	_, err = Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS visit_schedules (
            id UUID PRIMARY KEY,
            maintenance_id UUID NOT NULL UNIQUE REFERENCES maintenance_requests(id) ON DELETE CASCADE,
            scheduled_date TEXT NOT NULL,
            scheduled_time TEXT NOT NULL,
            estimated_duration INTEGER NOT NULL DEFAULT 120,
            status TEXT NOT NULL DEFAULT 'PROPOSED' CHECK (status IN ('PROPOSED', 'ACCEPTED')),
            proposed_by TEXT NOT NULL,
            contact_person TEXT,
            contact_phone TEXT,
            special_instructions TEXT,
            accepted_by TEXT NULL,
            accepted_at TIMESTAMP WITH TIME ZONE NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
	if err != nil {
		log.Printf("failed to create visit_schedules table: %v", err)
	}
}

// ensureMessagesTable creates the per-request negotiation thread table.
func ensureMessagesTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            request_id UUID NOT NULL REFERENCES maintenance_requests(id) ON DELETE CASCADE,
            sender_id UUID NOT NULL,
            recipient_id UUID NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_messages_request_created ON messages(request_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_messages_recipient_unread ON messages(recipient_id) WHERE read_at IS NULL;
    `)
	if err != nil {
		log.Printf("failed to create messages table: %v", err)
	}
}

// ensureNotificationsTable creates notifications table if it doesn't exist
func ensureNotificationsTable() {
	ctx := context.Background()
	var exists bool
	_ = Conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM information_schema.tables
            WHERE table_schema = 'public' AND table_name = 'notifications'
        )`).Scan(&exists)
	if exists {
		return
	}
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference UUID NULL,
            metadata JSONB NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
    `)
	if err != nil {
		log.Printf("failed to create notifications table: %v", err)
	}
}
