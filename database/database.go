// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/blinklabs-io/endaoment/database/plugin/blob"
	"github.com/blinklabs-io/endaoment/database/plugin/metadata"
	"github.com/blinklabs-io/endaoment/event"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	DataDir      string
}

// Database is the durable event journal. Encoded event payloads live in the
// blob store and are indexed by type, source and sequence number in the
// metadata store
type Database struct {
	logger     *slog.Logger
	blob       blob.BlobStore
	metadata   metadata.MetadataStore
	metrics    *journalMetrics
	payloads   map[event.EventType]reflect.Type
	dataDir    string
	payloadsMu sync.RWMutex
}

func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

func (d *Database) DataDir() string {
	return d.dataDir
}

func (d *Database) Logger() *slog.Logger {
	return d.logger
}

func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

func (d *Database) Close() error {
	return errors.Join(
		d.Metadata().Close(),
		d.Blob().Close(),
	)
}

func (d *Database) init(promRegistry prometheus.Registerer) error {
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if promRegistry != nil {
		d.metrics = newJournalMetrics(promRegistry)
	}
	// Check commit timestamp
	if err := d.checkCommitTimestamp(); err != nil {
		return err
	}
	return nil
}

// New opens the blob and metadata stores under cfg.DataDir. An empty DataDir
// keeps both stores in memory
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	metadataDb, err := metadata.New(cfg.DataDir, cfg.Logger, cfg.PromRegistry)
	if err != nil {
		return nil, err
	}
	blobDb, err := blob.New(cfg.DataDir, cfg.Logger, cfg.PromRegistry)
	if err != nil {
		_ = metadataDb.Close()
		return nil, err
	}
	db := &Database{
		logger:   cfg.Logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  cfg.DataDir,
		payloads: make(map[event.EventType]reflect.Type),
	}
	if err := db.init(cfg.PromRegistry); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
