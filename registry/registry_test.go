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

package registry_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/blinklabs-io/endaoment/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner    = common.MustAddress("0x00000000000000000000000000000000000000a1")
	testPauser   = common.MustAddress("0x00000000000000000000000000000000000000a2")
	testAdmin    = common.MustAddress("0x00000000000000000000000000000000000000a3")
	testOther    = common.MustAddress("0x00000000000000000000000000000000000000b1")
	testNewOwner = common.MustAddress("0x00000000000000000000000000000000000000c1")
)

func newTestRegistry(t *testing.T) (*ledger.Ledger, *ledger.MemoryJournal, *registry.Registry) {
	t.Helper()
	journal := ledger.NewMemoryJournal()
	l := ledger.NewLedger(ledger.LedgerConfig{Journal: journal})
	var reg *registry.Registry
	err := l.Execute(testOwner, "deployRegistry", func(c *ledger.Call) error {
		var err error
		reg, err = registry.New(c)
		return err
	})
	require.NoError(t, err)
	return l, journal, reg
}

func call(
	l *ledger.Ledger,
	caller common.Address,
	fn func(*ledger.Call) error,
) error {
	return l.Execute(caller, "test", fn)
}

func TestNewRegistry(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	assert.Equal(t, testOwner, reg.Owner())
	assert.True(t, reg.IsOwner(testOwner))
	assert.False(t, reg.IsOwner(testOther))
	assert.False(t, reg.IsOwner(common.ZeroAddress))
	_, pending := reg.PendingOwner()
	assert.False(t, pending)
	c, ok := l.Contract(reg.Address())
	require.True(t, ok)
	assert.Same(t, reg, c)
	evts := journal.EventsByType(registry.OwnershipTransferredEventType)
	require.Len(t, evts, 1)
	data, ok := evts[0].Data.(registry.OwnershipTransferredEvent)
	require.True(t, ok)
	assert.Equal(t, testOwner, data.NewOwner)
	assert.True(t, data.PreviousOwner.IsZero())
}

func TestNewRegistryZeroCaller(t *testing.T) {
	l := ledger.NewLedger(ledger.LedgerConfig{})
	err := l.Execute(common.ZeroAddress, "deployRegistry", func(c *ledger.Call) error {
		_, err := registry.New(c)
		return err
	})
	require.ErrorIs(t, err, common.ErrZeroAddress)
	assert.Equal(t, 0, l.ContractCount())
}

func TestSetRole(t *testing.T) {
	roles := []registry.Role{
		registry.RolePauser,
		registry.RoleAccountant,
		registry.RoleReviewer,
		registry.RoleFundFactory,
		registry.RoleOrgFactory,
		registry.RoleAdmin,
	}
	for _, role := range roles {
		t.Run(role.String(), func(t *testing.T) {
			l, journal, reg := newTestRegistry(t)
			_, ok := reg.LookupRole(role)
			require.False(t, ok)
			err := call(l, testOwner, func(c *ledger.Call) error {
				return reg.SetRole(c, role, testAdmin)
			})
			require.NoError(t, err)
			addr, err := reg.RoleAddress(role)
			require.NoError(t, err)
			assert.Equal(t, testAdmin, addr)
			assert.True(t, reg.IsRole(role, testAdmin))
			assert.False(t, reg.IsRole(role, testOther))
			evt, ok := journal.Last()
			require.True(t, ok)
			assert.Equal(t, registry.RoleModifiedEventType, evt.Type)
			assert.Equal(t, reg.Address(), evt.Source)
			data := evt.Data.(registry.RoleModifiedEvent)
			assert.Equal(t, role, data.Role)
			assert.Equal(t, testAdmin, data.Account)
		})
	}
}

func TestSetRoleOverwrites(t *testing.T) {
	l, _, reg := newTestRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RoleAdmin, testAdmin)
	}))
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RoleAdmin, testOther)
	}))
	assert.True(t, reg.IsRole(registry.RoleAdmin, testOther))
	assert.False(t, reg.IsRole(registry.RoleAdmin, testAdmin))
}

func TestSetRoleErrors(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	before := len(journal.Events())

	err := call(l, testOther, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RoleAdmin, testOther)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	err = call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RoleAdmin, common.ZeroAddress)
	})
	require.ErrorIs(t, err, common.ErrInvalid)
	require.ErrorIs(t, err, common.ErrZeroAddress)

	err = call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RoleEmpty, testAdmin)
	})
	require.ErrorIs(t, err, common.ErrInvalid)

	err = call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.Role(42), testAdmin)
	})
	require.ErrorIs(t, err, common.ErrInvalid)

	assert.Len(t, journal.Events(), before)
	_, ok := reg.LookupRole(registry.RoleAdmin)
	assert.False(t, ok)
}

func TestRemoveRole(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RoleReviewer, testAdmin)
	}))
	err := call(l, testOther, func(c *ledger.Call) error {
		return reg.RemoveRole(c, registry.RoleReviewer)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.RemoveRole(c, registry.RoleReviewer)
	}))
	assert.False(t, reg.IsRole(registry.RoleReviewer, testAdmin))
	_, err = reg.RoleAddress(registry.RoleReviewer)
	require.ErrorIs(t, err, registry.ErrRoleNotSet)
	require.ErrorIs(t, err, common.ErrNotFound)
	evt, ok := journal.Last()
	require.True(t, ok)
	data := evt.Data.(registry.RoleModifiedEvent)
	assert.Equal(t, registry.RoleReviewer, data.Role)
	assert.True(t, data.Account.IsZero())
}

func TestRoleAddressUnset(t *testing.T) {
	_, _, reg := newTestRegistry(t)
	_, err := reg.RoleAddress(registry.RoleAdmin)
	require.Error(t, err)
	var verr common.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, verr.Err, registry.ErrRoleNotSet)
	_, err = reg.Admin()
	assert.ErrorIs(t, err, registry.ErrRoleNotSet)
}

func TestPause(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RolePauser, testPauser)
	}))

	// Owner may pause
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.Pause(c, registry.RoleAccountant)
	}))
	assert.True(t, reg.IsPaused(registry.RoleAccountant))
	assert.False(t, reg.IsPaused(registry.RoleReviewer))

	// Pauser may unpause
	require.NoError(t, call(l, testPauser, func(c *ledger.Call) error {
		return reg.Unpause(c, registry.RoleAccountant)
	}))
	assert.False(t, reg.IsPaused(registry.RoleAccountant))

	// Anyone else may not
	err := call(l, testOther, func(c *ledger.Call) error {
		return reg.Pause(c, registry.RoleAccountant)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.False(t, reg.IsPaused(registry.RoleAccountant))

	assert.Len(t, journal.EventsByType(registry.RolePausedEventType), 1)
	assert.Len(t, journal.EventsByType(registry.RoleUnpausedEventType), 1)
}

func TestPauseIdempotent(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	for range 2 {
		require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
			return reg.Pause(c, registry.RoleReviewer)
		}))
	}
	assert.True(t, reg.IsPaused(registry.RoleReviewer))
	assert.Len(t, journal.EventsByType(registry.RolePausedEventType), 1)
	for range 2 {
		require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
			return reg.Unpause(c, registry.RoleReviewer)
		}))
	}
	assert.False(t, reg.IsPaused(registry.RoleReviewer))
	assert.Len(t, journal.EventsByType(registry.RoleUnpausedEventType), 1)
}

func TestPausedPauserCanStillPause(t *testing.T) {
	l, _, reg := newTestRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		if err := reg.SetRole(c, registry.RolePauser, testPauser); err != nil {
			return err
		}
		return reg.Pause(c, registry.RolePauser)
	}))
	require.NoError(t, call(l, testPauser, func(c *ledger.Call) error {
		return reg.Unpause(c, registry.RolePauser)
	}))
	assert.False(t, reg.IsPaused(registry.RolePauser))
}

func TestOwnershipTransfer(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.TransferOwnership(c, testNewOwner)
	}))
	pendingOwner, pending := reg.PendingOwner()
	require.True(t, pending)
	assert.Equal(t, testNewOwner, pendingOwner)

	// Only the pending owner can accept
	for _, caller := range []common.Address{testOwner, testOther} {
		err := call(l, caller, func(c *ledger.Call) error {
			return reg.AcceptOwnership(c)
		})
		require.ErrorIs(t, err, common.ErrUnauthorized)
	}
	assert.Equal(t, testOwner, reg.Owner())

	require.NoError(t, call(l, testNewOwner, func(c *ledger.Call) error {
		return reg.AcceptOwnership(c)
	}))
	assert.Equal(t, testNewOwner, reg.Owner())
	assert.True(t, reg.IsOwner(testNewOwner))
	assert.False(t, reg.IsOwner(testOwner))
	_, pending = reg.PendingOwner()
	assert.False(t, pending)

	evt, ok := journal.Last()
	require.True(t, ok)
	require.Equal(t, registry.OwnershipTransferredEventType, evt.Type)
	data := evt.Data.(registry.OwnershipTransferredEvent)
	assert.Equal(t, testOwner, data.PreviousOwner)
	assert.Equal(t, testNewOwner, data.NewOwner)

	// The previous owner lost its privileges
	err := call(l, testOwner, func(c *ledger.Call) error {
		return reg.SetRole(c, registry.RoleAdmin, testOwner)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestOwnershipTransferErrors(t *testing.T) {
	l, _, reg := newTestRegistry(t)
	err := call(l, testOther, func(c *ledger.Call) error {
		return reg.TransferOwnership(c, testOther)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	err = call(l, testOwner, func(c *ledger.Call) error {
		return reg.TransferOwnership(c, common.ZeroAddress)
	})
	require.ErrorIs(t, err, common.ErrZeroAddress)

	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.TransferOwnership(c, testNewOwner)
	}))
	err = call(l, testOwner, func(c *ledger.Call) error {
		return reg.TransferOwnership(c, testOther)
	})
	require.ErrorIs(t, err, common.ErrTransferPending)
	pendingOwner, _ := reg.PendingOwner()
	assert.Equal(t, testNewOwner, pendingOwner)

	// Accepting with nothing pending fails
	fl, _, fresh := newTestRegistry(t)
	err = call(fl, testNewOwner, func(c *ledger.Call) error {
		return fresh.AcceptOwnership(c)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCancelOwnershipTransfer(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.TransferOwnership(c, testNewOwner)
	}))
	err := call(l, testNewOwner, func(c *ledger.Call) error {
		return reg.CancelOwnershipTransfer(c)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.CancelOwnershipTransfer(c)
	}))
	_, pending := reg.PendingOwner()
	assert.False(t, pending)
	evts := journal.EventsByType(registry.TransferCancelledEventType)
	require.Len(t, evts, 1)
	assert.Equal(
		t,
		testNewOwner,
		evts[0].Data.(registry.TransferCancelledEvent).CancelledOwner,
	)

	err = call(l, testNewOwner, func(c *ledger.Call) error {
		return reg.AcceptOwnership(c)
	})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	// A new transfer can be started after cancelling
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.TransferOwnership(c, testOther)
	}))
}

func TestFailedCallLeavesRegistryUntouched(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	before := len(journal.Events())
	err := call(l, testOwner, func(c *ledger.Call) error {
		if err := reg.SetRole(c, registry.RoleAdmin, testAdmin); err != nil {
			return err
		}
		if err := reg.Pause(c, registry.RoleAdmin); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	_, ok := reg.LookupRole(registry.RoleAdmin)
	assert.False(t, ok)
	assert.False(t, reg.IsPaused(registry.RoleAdmin))
	assert.Len(t, journal.Events(), before)
}

func TestOwnershipOperationsComposedInOneCall(t *testing.T) {
	l, journal, reg := newTestRegistry(t)
	before := len(journal.Events())
	err := call(l, testOwner, func(c *ledger.Call) error {
		if err := reg.TransferOwnership(c, testNewOwner); err != nil {
			return err
		}
		return reg.TransferOwnership(c, testOther)
	})
	require.ErrorIs(t, err, common.ErrTransferPending)
	_, pending := reg.PendingOwner()
	assert.False(t, pending)
	assert.Len(t, journal.Events(), before)

	// Cancelling in the same call clears the way for a new transfer
	err = call(l, testOwner, func(c *ledger.Call) error {
		if err := reg.TransferOwnership(c, testNewOwner); err != nil {
			return err
		}
		if err := reg.CancelOwnershipTransfer(c); err != nil {
			return err
		}
		return reg.TransferOwnership(c, testOther)
	})
	require.NoError(t, err)
	pendingOwner, _ := reg.PendingOwner()
	assert.Equal(t, testOther, pendingOwner)

	// The accepted owner is authorized for later steps of the call, and a
	// failure reverts the acceptance
	err = call(l, testOther, func(c *ledger.Call) error {
		if err := reg.AcceptOwnership(c); err != nil {
			return err
		}
		return reg.SetRole(c, registry.RoleAdmin, common.ZeroAddress)
	})
	require.ErrorIs(t, err, common.ErrZeroAddress)
	assert.Equal(t, testOwner, reg.Owner())
	pendingOwner, _ = reg.PendingOwner()
	assert.Equal(t, testOther, pendingOwner)
}
