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

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/endaoment/database/models"
	"github.com/blinklabs-io/endaoment/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/endaoment/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Event index
	AddEvents([]models.Event, types.Txn) error
	GetEvent(uint64) (models.Event, error)
	GetEvents(models.EventFilter) ([]models.Event, error)
	LastEventSeq() (uint64, error)
	CountEventsByType() (map[string]int64, error)
}

// New returns a sqlite metadata store. An empty dataDir keeps everything in
// memory
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	store, err := sqlite.New(
		sqlite.WithDataDir(dataDir),
		sqlite.WithLogger(logger),
		sqlite.WithPromRegistry(promRegistry),
	)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return store, nil
}
