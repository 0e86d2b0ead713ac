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

package ledger_test

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/event"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testToken  = common.MustAddress("0x00000000000000000000000000000000000000d1")
	testAlice  = common.MustAddress("0x00000000000000000000000000000000000000a1")
	testBob    = common.MustAddress("0x00000000000000000000000000000000000000b1")
	testSource = common.MustAddress("0x00000000000000000000000000000000000000c1")

	testEventType event.EventType = "test.event"
)

type testContract struct {
	address common.Address
}

func (c *testContract) Address() common.Address {
	return c.address
}

type failingJournal struct{}

func (failingJournal) AppendEvents([]event.Event) error {
	return errors.New("disk full")
}

func TestExecuteCommits(t *testing.T) {
	journal := ledger.NewMemoryJournal()
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: journal})
	require.NoError(t, l.Mint(testToken, testAlice, 100))

	var hookRan bool
	var deployed *testContract
	err := l.Execute(testAlice, "send", func(c *ledger.Call) error {
		assert.Equal(t, testAlice, c.Caller())
		assert.Equal(t, "send", c.Method())
		if err := c.Transfer(testToken, testAlice, testBob, 40); err != nil {
			return err
		}
		// Staged balances are visible inside the call only
		assert.Equal(t, uint64(60), c.BalanceOf(testToken, testAlice))
		assert.Equal(t, uint64(100), l.BalanceOf(testToken, testAlice))
		deployed = &testContract{address: c.NewAddress(testAlice)}
		c.Deploy(deployed)
		c.Emit(testEventType, testSource, "one")
		c.Emit(testEventType, testSource, "two")
		c.OnCommit(func() { hookRan = true })
		return nil
	})
	require.NoError(t, err)
	assert.True(t, hookRan)
	assert.Equal(t, uint64(60), l.BalanceOf(testToken, testAlice))
	assert.Equal(t, uint64(40), l.BalanceOf(testToken, testBob))
	got, ok := l.Contract(deployed.Address())
	require.True(t, ok)
	assert.Same(t, deployed, got)
	assert.Equal(t, 1, l.ContractCount())

	evts := journal.Events()
	require.Len(t, evts, 2)
	assert.Equal(t, uint64(1), evts[0].Seq)
	assert.Equal(t, uint64(2), evts[1].Seq)
	assert.Equal(t, "two", evts[1].Data)
	assert.Equal(t, uint64(2), l.LastSeq())
}

func TestExecuteContinuesSequence(t *testing.T) {
	journal := ledger.NewMemoryJournal()
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: journal, LastSeq: 41})
	assert.Equal(t, uint64(41), l.LastSeq())
	require.NoError(t, l.Execute(testAlice, "emit", func(c *ledger.Call) error {
		c.Emit(testEventType, testSource, nil)
		return nil
	}))
	evt, ok := journal.Last()
	require.True(t, ok)
	assert.Equal(t, uint64(42), evt.Seq)
}

func TestExecuteRollsBack(t *testing.T) {
	journal := ledger.NewMemoryJournal()
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: journal})
	require.NoError(t, l.Mint(testToken, testAlice, 100))

	var hookRan bool
	var addr common.Address
	errAbort := errors.New("abort")
	err := l.Execute(testAlice, "send", func(c *ledger.Call) error {
		require.NoError(t, c.Transfer(testToken, testAlice, testBob, 40))
		addr = c.NewAddress(testAlice)
		c.Deploy(&testContract{address: addr})
		c.Emit(testEventType, testSource, nil)
		c.OnCommit(func() { hookRan = true })
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	assert.False(t, hookRan)
	assert.Equal(t, uint64(100), l.BalanceOf(testToken, testAlice))
	assert.Equal(t, uint64(0), l.BalanceOf(testToken, testBob))
	_, ok := l.Contract(addr)
	assert.False(t, ok)
	assert.Empty(t, journal.Events())
	assert.Equal(t, uint64(0), l.LastSeq())

	// The address reserved by the failed call is handed out again
	require.NoError(t, l.Execute(testAlice, "deploy", func(c *ledger.Call) error {
		assert.Equal(t, addr, c.NewAddress(testAlice))
		return nil
	}))
}

func TestExecuteJournalFailureAborts(t *testing.T) {
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: failingJournal{}})
	require.NoError(t, l.Mint(testToken, testAlice, 10))
	var hookRan bool
	err := l.Execute(testAlice, "send", func(c *ledger.Call) error {
		if err := c.Transfer(testToken, testAlice, testBob, 10); err != nil {
			return err
		}
		c.Emit(testEventType, testSource, nil)
		c.OnCommit(func() { hookRan = true })
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, hookRan)
	assert.Equal(t, uint64(10), l.BalanceOf(testToken, testAlice))
}

func TestExecuteApplyUndo(t *testing.T) {
	var state []string
	push := func(v string) func() {
		return func() { state = append(state, v) }
	}
	pop := func() { state = state[:len(state)-1] }
	l := ledger.NewLedger(ledger.LedgerConfig{})

	require.NoError(t, l.Execute(testAlice, "apply", func(c *ledger.Call) error {
		c.Apply(push("a"), pop)
		// Later steps of the same call observe the change
		assert.Equal(t, []string{"a"}, state)
		return nil
	}))
	assert.Equal(t, []string{"a"}, state)

	var undone []string
	errAbort := errors.New("abort")
	err := l.Execute(testAlice, "apply", func(c *ledger.Call) error {
		c.Apply(push("b"), func() { undone = append(undone, "b"); pop() })
		c.Apply(push("c"), func() { undone = append(undone, "c"); pop() })
		assert.Equal(t, []string{"a", "b", "c"}, state)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	assert.Equal(t, []string{"a"}, state)
	assert.Equal(t, []string{"c", "b"}, undone)
}

func TestExecuteJournalFailureUndoesApply(t *testing.T) {
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: failingJournal{}})
	applied := false
	err := l.Execute(testAlice, "apply", func(c *ledger.Call) error {
		c.Apply(func() { applied = true }, func() { applied = false })
		c.Emit(testEventType, testSource, nil)
		return nil
	})
	require.Error(t, err)
	assert.False(t, applied)
}

func TestTransfer(t *testing.T) {
	l := ledger.NewLedger(ledger.LedgerConfig{})
	require.NoError(t, l.Mint(testToken, testAlice, 10))
	err := l.Execute(testAlice, "send", func(c *ledger.Call) error {
		return c.Transfer(testToken, testAlice, testBob, 11)
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	require.ErrorIs(t, err, common.ErrInvalid)
	var terr ledger.TransferError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, uint64(10), terr.Balance)

	err = l.Execute(testAlice, "send", func(c *ledger.Call) error {
		return c.Transfer(common.ZeroAddress, testAlice, testBob, 1)
	})
	require.ErrorIs(t, err, common.ErrZeroAddress)
	err = l.Execute(testAlice, "send", func(c *ledger.Call) error {
		return c.Transfer(testToken, testAlice, common.ZeroAddress, 1)
	})
	require.ErrorIs(t, err, common.ErrZeroAddress)

	// Zero amounts and self transfers succeed without effect
	require.NoError(t, l.Execute(testAlice, "send", func(c *ledger.Call) error {
		if err := c.Transfer(testToken, testBob, testAlice, 0); err != nil {
			return err
		}
		return c.Transfer(testToken, testAlice, testAlice, 10)
	}))
	assert.Equal(t, uint64(10), l.BalanceOf(testToken, testAlice))
}

func TestMint(t *testing.T) {
	l := ledger.NewLedger(ledger.LedgerConfig{})
	require.NoError(t, l.Mint(testToken, testAlice, math.MaxUint64))
	err := l.Mint(testToken, testAlice, 1)
	require.ErrorIs(t, err, ledger.ErrBalanceOverflow)
	require.ErrorIs(t, l.Mint(common.ZeroAddress, testAlice, 1), common.ErrZeroAddress)
	require.ErrorIs(t, l.Mint(testToken, common.ZeroAddress, 1), common.ErrZeroAddress)
}

func TestCallFinished(t *testing.T) {
	l := ledger.NewLedger(ledger.LedgerConfig{})
	require.NoError(t, l.Mint(testToken, testAlice, 10))
	var leaked *ledger.Call
	require.NoError(t, l.Execute(testAlice, "leak", func(c *ledger.Call) error {
		leaked = c
		return nil
	}))
	err := leaked.Transfer(testToken, testAlice, testBob, 1)
	require.ErrorIs(t, err, ledger.ErrCallFinished)
}

func TestExecutePublishesEvents(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	var mu sync.Mutex
	var received []event.Event
	done := make(chan struct{})
	bus.SubscribeFunc(testEventType, func(evt event.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, evt)
		if len(received) == 2 {
			close(done)
		}
	})
	l := ledger.NewLedger(ledger.LedgerConfig{EventBus: bus})
	require.NoError(t, l.Execute(testAlice, "emit", func(c *ledger.Call) error {
		c.Emit(testEventType, testSource, 1)
		c.Emit(testEventType, testSource, 2)
		return nil
	}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, uint64(1), received[0].Seq)
	assert.Equal(t, testSource, received[0].Source)
}

func TestLedgerMetrics(t *testing.T) {
	promRegistry := prometheus.NewRegistry()
	l := ledger.NewLedger(ledger.LedgerConfig{PromRegistry: promRegistry})
	require.NoError(t, l.Execute(testAlice, "ok", func(c *ledger.Call) error {
		c.Deploy(&testContract{address: c.NewAddress(testAlice)})
		c.Emit(testEventType, testSource, nil)
		return nil
	}))
	require.Error(t, l.Execute(testAlice, "bad", func(c *ledger.Call) error {
		return errors.New("nope")
	}))
	count, err := testutil.GatherAndCount(promRegistry, "endaoment_ledger_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	expected := `
# HELP endaoment_ledger_events_total total events committed
# TYPE endaoment_ledger_events_total counter
endaoment_ledger_events_total 1
`
	require.NoError(t, testutil.GatherAndCompare(
		promRegistry,
		strings.NewReader(expected),
		"endaoment_ledger_events_total",
	))
}
