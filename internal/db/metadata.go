//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/pkg/version"
)

// MetadataTable records how the demo dataset was produced.
const MetadataTable = "retailbi_metadata"

// CreateMetadataTableSQL is valid for both PostgreSQL and SQLite.
const CreateMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS retailbi_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

const upsertMetadataSQL = `
INSERT INTO retailbi_metadata (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

// SeedMetadata builds the key/value set stored after a seed run.
func SeedMetadata(driver string, seed int64, orders int) map[string]string {
	return map[string]string{
		"source":         driver,
		"version":        version.Short(),
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
		"seed":           fmt.Sprintf("%d", seed),
		"orders":         fmt.Sprintf("%d", orders),
	}
}

// SaveMetadata writes metadata to the PostgreSQL metadata table.
func SaveMetadata(ctx context.Context, pool *pgxpool.Pool, metadata map[string]string) error {
	if _, err := pool.Exec(ctx, CreateMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	for key, value := range metadata {
		if _, err := pool.Exec(ctx, upsertMetadataSQL, key, value); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().Int("keys", len(metadata)).Msg("Saved metadata")
	return nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM `+MetadataTable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+MetadataTable)
	return err
}
