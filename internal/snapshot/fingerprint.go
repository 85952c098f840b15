//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

// Fingerprint hashes the JSON encoding of s. Equal snapshots always have
// equal fingerprints, which makes it usable as an HTTP entity tag.
func Fingerprint(s *model.Snapshot) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil snapshot")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return fmt.Sprintf("%016x", xxh3.Hash(b)), nil
}
