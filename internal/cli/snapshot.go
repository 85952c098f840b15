//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/snapshot"
)

var snapshotPretty bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Build one snapshot and write it as JSON to stdout",
	Long: `Build a complete dashboard snapshot from the configured source and
write it to stdout. A failure in any hard section exits with an error and
writes nothing.

Example:
  retailbi snapshot --source postgres --connection "postgres://..." --pretty
  retailbi snapshot --source memory > demo.json`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotPretty, "pretty", false,
		"indent the JSON output")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateSnapshot(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if timeout := buildTimeout(); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	src, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	snap, err := snapshot.NewAssembler(src, snapshotOptions(cfg.Snapshot)).Build(ctx)
	if err != nil {
		return err
	}

	fp, err := snapshot.Fingerprint(snap)
	if err != nil {
		return err
	}
	logging.Info().Str("fingerprint", fp).Msg("Snapshot complete")

	return writeSnapshot(cmd.OutOrStdout(), snap, snapshotPretty)
}

func writeSnapshot(w io.Writer, snap *model.Snapshot, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(snap)
}
