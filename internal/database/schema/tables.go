// Package schema defines the database schema for development.
//
// DEVELOPMENT USE ONLY
// This file contains the current database schema and is used for development and testing.
// Before deploying to production, these table definitions should be converted to proper migrations.
package schema

// TableDefinitions contains all the SQL statements to create the database tables.
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE statements.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS users (
		phone VARCHAR(20) PRIMARY KEY,
		attributes JSONB NOT NULL DEFAULT '{}',
		consent_state VARCHAR(20) NOT NULL DEFAULT 'OPT_IN',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS templates (
		id VARCHAR(40) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		channel VARCHAR(20) NOT NULL,
		locale VARCHAR(20) NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS segments (
		id VARCHAR(40) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		predicate JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id VARCHAR(40) PRIMARY KEY,
		topic VARCHAR(255) NOT NULL,
		template_id VARCHAR(40) NOT NULL,
		segment_id VARCHAR(40),
		status VARCHAR(20) NOT NULL,
		rate_limit_per_second INTEGER NOT NULL DEFAULT 0,
		quiet_hours_start VARCHAR(5),
		quiet_hours_end VARCHAR(5),
		schedule_time TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id VARCHAR(40) PRIMARY KEY,
		campaign_id VARCHAR(40) NOT NULL,
		phone VARCHAR(20) NOT NULL,
		channel VARCHAR(20) NOT NULL,
		rendered_body TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		provider_sid VARCHAR(64),
		error_code VARCHAR(32),
		sent_at TIMESTAMP,
		delivered_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS messages_campaign_phone_idx ON messages (campaign_id, phone)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS messages_provider_sid_idx ON messages (provider_sid) WHERE provider_sid IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS inbound_events (
		id VARCHAR(40) PRIMARY KEY,
		phone VARCHAR(20) NOT NULL,
		body TEXT NOT NULL,
		raw_payload JSONB NOT NULL DEFAULT '{}',
		processed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS delivery_receipts (
		id VARCHAR(40) PRIMARY KEY,
		provider_sid VARCHAR(64) NOT NULL,
		status VARCHAR(20) NOT NULL,
		raw_payload JSONB NOT NULL DEFAULT '{}',
		reconciled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS delivery_receipts_unreconciled_idx ON delivery_receipts (created_at) WHERE reconciled = FALSE`,
}

// TableNames returns a list of all table names in creation order.
var TableNames = []string{
	"users",
	"templates",
	"segments",
	"campaigns",
	"messages",
	"inbound_events",
	"delivery_receipts",
}
