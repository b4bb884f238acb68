package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchema guards against loading a corrupt or foreign file as ledger
// state. Entity contents stay open; only the envelope shape is pinned.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["assignments", "submissions", "assignment_counter", "submission_counter"],
  "properties": {
    "assignments": {"type": "object"},
    "submissions": {"type": "object"},
    "assignment_counter": {"type": "integer", "minimum": 1},
    "submission_counter": {"type": "integer", "minimum": 1}
  }
}`

// FileGateway stores snapshots as a JSON file. Saves go through a temp file
// in the same directory followed by a rename, so a crash mid-write leaves
// the previous snapshot intact.
type FileGateway struct {
	path   string
	schema *jsonschema.Schema
	logger zerolog.Logger
}

// NewFileGateway constructs a gateway writing to the given path.
func NewFileGateway(path string, logger zerolog.Logger) (*FileGateway, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path must not be empty")
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("snapshot.schema.json", strings.NewReader(snapshotSchema)); err != nil {
		return nil, fmt.Errorf("failed to register snapshot schema: %w", err)
	}
	schema, err := compiler.Compile("snapshot.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot schema: %w", err)
	}

	return &FileGateway{
		path:   path,
		schema: schema,
		logger: logger.With().Str("component", "file_gateway").Logger(),
	}, nil
}

// Load reads the durable snapshot. A missing file yields the initial empty
// state; a file that fails schema validation is rejected rather than
// silently absorbed.
func (g *FileGateway) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			g.logger.Info().Str("path", g.path).Msg("no snapshot on disk, starting empty")
			return NewSnapshot(), nil
		}
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot is not valid JSON: %w", err)
	}
	if err := g.schema.Validate(payload); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot failed schema validation: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	snapshot.normalize()

	return snapshot, nil
}

// Save writes the snapshot atomically.
func (g *FileGateway) Save(_ context.Context, snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, g.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}
