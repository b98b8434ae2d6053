package api

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/factoryconfig/pkg/archive"
	"github.com/ssargent/factoryconfig/pkg/codec"
	"github.com/ssargent/factoryconfig/pkg/store"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string
	// Source labels snapshots taken before a save.
	Source string
}

// Snapshotter archives a medium image before it is overwritten.
type Snapshotter interface {
	Put(snap *archive.Snapshot) (ksuid.KSUID, error)
}

// LoadSummary is the JSON form of a store.LoadResult.
type LoadSummary struct {
	Outcome       string  `json:"outcome"`
	Status        int     `json:"status"`
	Version       string  `json:"version,omitempty"`
	Migrated      bool    `json:"migrated"`
	BlocksDecoded int     `json:"blocks_decoded"`
	BlocksSkipped int     `json:"blocks_skipped"`
	Attempts      int     `json:"attempts"`
	Defaulted     bool    `json:"defaulted"`
	DurationMS    float64 `json:"duration_ms"`
}

func summarize(res *store.LoadResult) LoadSummary {
	if res == nil {
		return LoadSummary{Outcome: store.Success.String()}
	}
	s := LoadSummary{
		Outcome:       res.Outcome.String(),
		Status:        int(res.Outcome.Status()),
		Migrated:      res.Migrated,
		BlocksDecoded: res.BlocksDecoded,
		BlocksSkipped: res.BlocksSkipped,
		Attempts:      res.Attempts,
		Defaulted:     res.Defaulted,
		DurationMS:    float64(res.Duration) / float64(time.Millisecond),
	}
	if res.Version != 0 {
		s.Version = codec.FormatVersion(res.Version)
	}
	return s
}

// ConfigResponse is returned by the factory configuration routes.
type ConfigResponse struct {
	Config store.View  `json:"config"`
	Load   LoadSummary `json:"load"`
}

// SaveResponse is returned after writing the medium.
type SaveResponse struct {
	Segments   int    `json:"segments"`
	BytesSent  int    `json:"bytes_sent"`
	EndOffset  int64  `json:"end_offset"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}
