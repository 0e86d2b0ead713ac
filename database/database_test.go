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

package database_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/database"
	"github.com/blinklabs-io/endaoment/database/models"
	"github.com/blinklabs-io/endaoment/database/types"
	"github.com/blinklabs-io/endaoment/event"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/blinklabs-io/endaoment/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner                   = common.MustAddress("0x00000000000000000000000000000000000000a1")
	testAdmin                   = common.MustAddress("0x00000000000000000000000000000000000000a2")
	testPauser                  = common.MustAddress("0x00000000000000000000000000000000000000a3")
	testUnknown event.EventType = "test.unregistered"
)

func newTestDatabase(t *testing.T, cfg *database.Config) *database.Database {
	t.Helper()
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	db.RegisterPayload(registry.RoleModifiedEventType, registry.RoleModifiedEvent{})
	db.RegisterPayload(
		registry.OwnershipTransferredEventType,
		&registry.OwnershipTransferredEvent{},
	)
	return db
}

// journalRoles deploys a registry through a ledger backed by db and assigns
// two roles, which journals three events
func journalRoles(t *testing.T, db *database.Database) *registry.Registry {
	t.Helper()
	lastSeq, err := db.LastSeq()
	require.NoError(t, err)
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: db, LastSeq: lastSeq})
	var reg *registry.Registry
	require.NoError(t, l.Execute(testOwner, "deployRegistry", func(c *ledger.Call) error {
		var err error
		reg, err = registry.New(c)
		return err
	}))
	require.NoError(t, l.Execute(testOwner, "setRoles", func(c *ledger.Call) error {
		if err := reg.SetRole(c, registry.RoleAdmin, testAdmin); err != nil {
			return err
		}
		return reg.SetRole(c, registry.RolePauser, testPauser)
	}))
	return reg
}

func TestJournalRoundTrip(t *testing.T) {
	db := newTestDatabase(t, nil)
	reg := journalRoles(t, db)

	evts, err := db.Events(database.EventQuery{})
	require.NoError(t, err)
	require.Len(t, evts, 3)
	for i, evt := range evts {
		assert.Equal(t, uint64(i+1), evt.Seq)
		assert.Equal(t, reg.Address(), evt.Source)
		assert.False(t, evt.Timestamp.IsZero())
	}
	assert.Equal(t, registry.OwnershipTransferredEventType, evts[0].Type)
	transferred, ok := evts[0].Data.(registry.OwnershipTransferredEvent)
	require.True(t, ok, "unexpected payload type %T", evts[0].Data)
	assert.Equal(t, testOwner, transferred.NewOwner)

	modified, ok := evts[2].Data.(registry.RoleModifiedEvent)
	require.True(t, ok, "unexpected payload type %T", evts[2].Data)
	assert.Equal(t, registry.RolePauser, modified.Role)
	assert.Equal(t, testPauser, modified.Account)

	lastSeq, err := db.LastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), lastSeq)
}

func TestEventsQuery(t *testing.T) {
	db := newTestDatabase(t, nil)
	reg := journalRoles(t, db)

	byType, err := db.Events(database.EventQuery{Type: registry.RoleModifiedEventType})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	bySource, err := db.Events(database.EventQuery{Source: reg.Address()})
	require.NoError(t, err)
	assert.Len(t, bySource, 3)

	other, err := db.Events(database.EventQuery{Source: testAdmin})
	require.NoError(t, err)
	assert.Empty(t, other)

	page, err := db.Events(database.EventQuery{AfterSeq: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(2), page[0].Seq)

	evt, err := db.Event(2)
	require.NoError(t, err)
	assert.Equal(t, registry.RoleModifiedEventType, evt.Type)
	_, err = db.Event(99)
	require.ErrorIs(t, err, models.ErrEventNotFound)

	counts, err := db.EventCounts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[registry.RoleModifiedEventType])
	assert.Equal(t, int64(1), counts[registry.OwnershipTransferredEventType])
}

func TestUnregisteredPayload(t *testing.T) {
	db := newTestDatabase(t, nil)
	require.NoError(t, db.AppendEvents([]event.Event{
		{Seq: 1, Type: testUnknown, Source: testOwner, Data: "hello"},
	}))
	evt, err := db.Event(1)
	require.NoError(t, err)
	assert.Equal(t, "hello", evt.Data)
}

func TestDuplicateSeqRejected(t *testing.T) {
	db := newTestDatabase(t, nil)
	evts := []event.Event{{Seq: 1, Type: testUnknown, Source: testOwner}}
	require.NoError(t, db.AppendEvents(evts))
	require.Error(t, db.AppendEvents(evts))

	// The failed batch leaves no payload behind for a new sequence number
	require.Error(t, db.AppendEvents([]event.Event{
		{Seq: 2, Type: testUnknown, Source: testOwner},
		{Seq: 1, Type: testUnknown, Source: testOwner},
	}))
	txn := db.Transaction(false)
	defer txn.Release()
	_, err := db.Blob().Get(txn.Blob(), types.EventBlobKey(2))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestJournalFailureAbortsCall(t *testing.T) {
	db := newTestDatabase(t, nil)
	require.NoError(t, db.AppendEvents([]event.Event{
		{Seq: 1, Type: testUnknown, Source: testOwner},
	}))
	// A ledger that does not know about the existing event reuses seq 1
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: db})
	err := l.Execute(testOwner, "deployRegistry", func(c *ledger.Call) error {
		_, err := registry.New(c)
		return err
	})
	require.Error(t, err)
	assert.Equal(t, 0, l.ContractCount())
}

func TestPersistentJournal(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	journalRoles(t, db)
	require.NoError(t, db.Close())

	db = newTestDatabase(t, &database.Config{DataDir: dataDir})
	journalRoles(t, db)
	lastSeq, err := db.LastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), lastSeq)
	evts, err := db.Events(database.EventQuery{AfterSeq: 3})
	require.NoError(t, err)
	require.Len(t, evts, 3)
	assert.Equal(t, registry.OwnershipTransferredEventType, evts[0].Type)
}

func TestCommitTimestampMismatch(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	journalRoles(t, db)
	// Move the blob store ahead of the metadata store
	txn := db.Blob().NewTransaction(true)
	require.NoError(t, db.Blob().SetCommitTimestamp(1, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NotNil(t, db)
	defer db.Close()
	var tsErr database.CommitTimestampError
	require.True(t, errors.As(err, &tsErr), "unexpected error: %v", err)
	assert.Equal(t, int64(1), tsErr.BlobTimestamp)
}

func TestJournalMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	db := newTestDatabase(t, &database.Config{PromRegistry: reg})
	journalRoles(t, db)
	count, err := testutil.GatherAndCount(
		reg,
		"endaoment_journal_events_persisted_total",
		"endaoment_journal_appends_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
