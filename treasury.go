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

package endaoment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/database"
	"github.com/blinklabs-io/endaoment/event"
	"github.com/blinklabs-io/endaoment/internal/deploy"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/blinklabs-io/endaoment/registry"
)

// Treasury wires a ledger to the durable event journal and the event bus
type Treasury struct {
	config        Config
	db            *database.Database
	eventBus      *event.EventBus
	ledger        *ledger.Ledger
	shutdownFuncs []func(context.Context) error
	ownsEventBus  bool
	closeOnce     sync.Once
	closeErr      error
}

// New opens the event journal and starts a ledger that continues its
// sequence numbering
func New(cfg Config) (*Treasury, error) {
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	t := &Treasury{
		config:   cfg,
		eventBus: cfg.eventBus,
	}
	// Configure tracing
	if cfg.tracing {
		if err := t.setupTracing(); err != nil {
			return nil, err
		}
	}
	db, err := database.New(&database.Config{
		DataDir:      cfg.dataDir,
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		_ = t.shutdown()
		var tsErr database.CommitTimestampError
		if errors.As(err, &tsErr) {
			cfg.logger.Error(
				"event journal is inconsistent",
				"component", "treasury",
				"error", err,
			)
		}
		return nil, fmt.Errorf("failed to open event journal: %w", err)
	}
	t.db = db
	registerPayloads(db)
	lastSeq, err := db.LastSeq()
	if err != nil {
		_ = db.Close()
		_ = t.shutdown()
		return nil, fmt.Errorf("failed to read event journal: %w", err)
	}
	if t.eventBus == nil {
		t.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
		t.ownsEventBus = true
	}
	t.ledger = ledger.NewLedger(ledger.LedgerConfig{
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		EventBus:     t.eventBus,
		Journal:      db,
		LastSeq:      lastSeq,
	})
	cfg.logger.Debug(
		"treasury started",
		"component", "treasury",
		"data_dir", cfg.dataDir,
		"last_seq", lastSeq,
	)
	return t, nil
}

func (t *Treasury) Ledger() *ledger.Ledger {
	return t.ledger
}

func (t *Treasury) Database() *database.Database {
	return t.db
}

func (t *Treasury) EventBus() *event.EventBus {
	return t.eventBus
}

// Bootstrap deploys a registry owned by owner together with both factories
// and assigns roles. See deploy.Bootstrap
func (t *Treasury) Bootstrap(
	ctx context.Context,
	owner common.Address,
	roles map[registry.Role]common.Address,
) (*deploy.Deployment, error) {
	return deploy.Bootstrap(ctx, deploy.Config{
		Ledger: t.ledger,
		Logger: t.config.logger,
		Owner:  owner,
		Roles:  roles,
	})
}

// Close stops the event bus, if the treasury created it, closes the event
// journal and flushes any buffered trace spans
func (t *Treasury) Close() error {
	t.closeOnce.Do(func() {
		if t.ownsEventBus {
			t.eventBus.Stop()
		}
		t.closeErr = errors.Join(t.db.Close(), t.shutdown())
		t.config.logger.Debug(
			"treasury closed",
			"component", "treasury",
		)
	})
	return t.closeErr
}

func (t *Treasury) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if t.config.shutdownTimeout > 0 {
		shutdownTimeout = t.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var err error
	for _, fn := range t.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	t.shutdownFuncs = nil
	return err
}
