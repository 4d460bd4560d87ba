// Package replay extracts structured metadata from uploaded replay files.
// The binary replay format is decoded by an external parser command; uploads
// that are already JSON metadata (fixtures, re-submissions from other tools)
// are decoded inline.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/example/leaguedesk/internal/domain/model"
	"github.com/example/leaguedesk/pkg/logger"
	"github.com/example/leaguedesk/pkg/metrics"
)

// Extractor turns raw replay bytes into metadata, or ErrParse.
type Extractor interface {
	Extract(ctx context.Context, raw []byte) (model.ReplayMetadata, error)
}

// payload is the parser wire format. A failed parse carries only Error.
type payload struct {
	MapName string `json:"map_name"`
	Players []struct {
		Name string `json:"name"`
		Race string `json:"srace"`
	} `json:"players"`
	Error string `json:"error"`
}

// MetadataExtractor shells out to a configured parser command, with an
// inline path for JSON input.
type MetadataExtractor struct {
	command string
	timeout time.Duration
	log     logger.Logger
}

// New builds an extractor. With no command configured only JSON input can be
// decoded; binary replays report ErrParse.
func New(opts ...Option) *MetadataExtractor {
	e := &MetadataExtractor{
		timeout: 30 * time.Second,
		log:     logger.Named("replay"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract decodes raw replay bytes. Every failure is ErrParse: parse
// failures are per-item and must not abort a batch.
func (e *MetadataExtractor) Extract(ctx context.Context, raw []byte) (md model.ReplayMetadata, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordExtractLatency(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordParseFailure()
		}
	}()

	var out []byte
	switch {
	case bytes.HasPrefix(bytes.TrimLeft(raw, " \t\r\n"), []byte("{")):
		out = raw
	case e.command == "":
		return md, fmt.Errorf("%w: no parser command configured", ErrParse)
	default:
		out, err = e.runParser(ctx, raw)
		if err != nil {
			return md, err
		}
	}
	return decode(out)
}

// runParser writes raw to a temp file and invokes the parser on it, reading
// JSON metadata from stdout.
func (e *MetadataExtractor) runParser(ctx context.Context, raw []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "replay-*.SC2Replay")
	if err != nil {
		return nil, fmt.Errorf("%w: temp file: %w", ErrParse, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err = tmp.Write(raw); err == nil {
		err = tmp.Close()
	} else {
		_ = tmp.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: temp file: %w", ErrParse, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, e.command, tmp.Name()).Output()
	if err != nil {
		e.log.Warn(ctx, "parser command failed", logger.Error(err))
		return nil, fmt.Errorf("%w: parser command: %w", ErrParse, err)
	}
	return out, nil
}

func decode(out []byte) (model.ReplayMetadata, error) {
	var md model.ReplayMetadata

	var p payload
	if err := json.Unmarshal(out, &p); err != nil {
		return md, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if p.Error != "" {
		return md, fmt.Errorf("%w: %s", ErrParse, p.Error)
	}
	if len(p.Players) != 2 {
		return md, fmt.Errorf("%w: want 2 players, got %d", ErrParse, len(p.Players))
	}

	md.MapName = p.MapName
	for i, pl := range p.Players {
		md.Players[i] = model.PlayerEntry{Name: pl.Name, Race: pl.Race}
	}
	if err := md.Validate(); err != nil {
		return model.ReplayMetadata{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return md, nil
}
