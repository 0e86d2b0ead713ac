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

package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/ledger"
)

// ErrRoleNotSet is returned when resolving a role that has no holder
var ErrRoleNotSet = fmt.Errorf("role bearer is null address: %w", common.ErrNotFound)

var errInvalidRole = errors.New("invalid role")

// Reader is the read-only view of a role registry used for authorization
type Reader interface {
	Address() common.Address
	Owner() common.Address
	IsOwner(common.Address) bool
	IsRole(Role, common.Address) bool
	IsPaused(Role) bool
	LookupRole(Role) (common.Address, bool)
	RoleAddress(Role) (common.Address, error)
}

// Provider resolves the registry currently in effect for a contract. A
// Registry provides itself; a factory provides whatever registry it points to
// at the time of the call
type Provider interface {
	Registry() Reader
}

// Registry holds the owner, the role assignments and the per-role pause flags
type Registry struct {
	address      common.Address
	owner        common.Address
	pendingOwner common.Address
	holders      [roleCount]common.Address
	paused       [roleCount]bool
	mu           sync.RWMutex
}

// New deploys a registry owned by the caller
func New(call *ledger.Call) (*Registry, error) {
	if call.Caller().IsZero() {
		return nil, common.NewValidationError("deployRegistry", "owner", common.ErrZeroAddress)
	}
	r := &Registry{
		address: call.NewAddress(call.Caller()),
		owner:   call.Caller(),
	}
	call.Deploy(r)
	call.Emit(
		OwnershipTransferredEventType,
		r.address,
		OwnershipTransferredEvent{
			Registry: r.address,
			NewOwner: r.owner,
		},
	)
	return r, nil
}

func (r *Registry) Address() common.Address {
	return r.address
}

func (r *Registry) Registry() Reader {
	return r
}

func (r *Registry) Owner() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// PendingOwner returns the proposed owner and whether a transfer is pending
func (r *Registry) PendingOwner() (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pendingOwner, !r.pendingOwner.IsZero()
}

func (r *Registry) IsOwner(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !addr.IsZero() && addr == r.owner
}

func (r *Registry) IsRole(role Role, addr common.Address) bool {
	if !role.Valid() || addr.IsZero() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.holders[role] == addr
}

func (r *Registry) IsPaused(role Role) bool {
	if !role.Valid() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused[role]
}

// LookupRole returns the holder of role and whether the role is set
func (r *Registry) LookupRole(role Role) (common.Address, bool) {
	if !role.Valid() {
		return common.ZeroAddress, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	holder := r.holders[role]
	return holder, !holder.IsZero()
}

// RoleAddress returns the holder of role, failing with ErrRoleNotSet when the
// role is unset
func (r *Registry) RoleAddress(role Role) (common.Address, error) {
	if !role.Valid() {
		return common.ZeroAddress, common.NewValidationError("getRoleAddress", "role", errInvalidRole)
	}
	holder, ok := r.LookupRole(role)
	if !ok {
		return common.ZeroAddress, common.NewValidationError("getRoleAddress", role.String(), ErrRoleNotSet)
	}
	return holder, nil
}

// Admin resolves the ADMIN role holder
func (r *Registry) Admin() (common.Address, error) {
	return r.RoleAddress(RoleAdmin)
}

// SetRole assigns role to addr, replacing any previous holder
func (r *Registry) SetRole(call *ledger.Call, role Role, addr common.Address) error {
	const op = "setRole"
	if err := Authorize(r, call.Caller(), op, Owner()); err != nil {
		return err
	}
	if !role.Valid() {
		return common.NewValidationError(op, "role", errInvalidRole)
	}
	if err := common.RequireAddress(op, "account", addr); err != nil {
		return err
	}
	previous, _ := r.LookupRole(role)
	call.Emit(
		RoleModifiedEventType,
		r.address,
		RoleModifiedEvent{
			Registry: r.address,
			Role:     role,
			Account:  addr,
			Paused:   r.IsPaused(role),
		},
	)
	call.Apply(
		func() { r.setHolder(role, addr) },
		func() { r.setHolder(role, previous) },
	)
	return nil
}

// RemoveRole clears the holder of role. The pause flag is left as is
func (r *Registry) RemoveRole(call *ledger.Call, role Role) error {
	const op = "removeRole"
	if err := Authorize(r, call.Caller(), op, Owner()); err != nil {
		return err
	}
	if !role.Valid() {
		return common.NewValidationError(op, "role", errInvalidRole)
	}
	previous, _ := r.LookupRole(role)
	call.Emit(
		RoleModifiedEventType,
		r.address,
		RoleModifiedEvent{
			Registry: r.address,
			Role:     role,
			Paused:   r.IsPaused(role),
		},
	)
	call.Apply(
		func() { r.setHolder(role, common.ZeroAddress) },
		func() { r.setHolder(role, previous) },
	)
	return nil
}

// Pause pauses role. Pausing an already paused role succeeds without effect
func (r *Registry) Pause(call *ledger.Call, role Role) error {
	return r.setPaused(call, "pause", role, true)
}

// Unpause unpauses role. Unpausing an active role succeeds without effect
func (r *Registry) Unpause(call *ledger.Call, role Role) error {
	return r.setPaused(call, "unpause", role, false)
}

func (r *Registry) setPaused(
	call *ledger.Call,
	op string,
	role Role,
	paused bool,
) error {
	if err := Authorize(r, call.Caller(), op, Owner(), Holder(RolePauser)); err != nil {
		return err
	}
	if !role.Valid() {
		return common.NewValidationError(op, "role", errInvalidRole)
	}
	if r.IsPaused(role) == paused {
		return nil
	}
	holder, _ := r.LookupRole(role)
	eventType := RoleUnpausedEventType
	if paused {
		eventType = RolePausedEventType
	}
	call.Emit(
		eventType,
		r.address,
		RolePauseEvent{
			Registry: r.address,
			Role:     role,
			Account:  holder,
			Paused:   paused,
		},
	)
	call.Apply(
		func() { r.setPausedFlag(role, paused) },
		func() { r.setPausedFlag(role, !paused) },
	)
	return nil
}

// TransferOwnership starts a two-step ownership transfer to newOwner
func (r *Registry) TransferOwnership(call *ledger.Call, newOwner common.Address) error {
	const op = "transferOwnership"
	if err := Authorize(r, call.Caller(), op, Owner()); err != nil {
		return err
	}
	if err := common.RequireAddress(op, "newOwner", newOwner); err != nil {
		return err
	}
	if _, pending := r.PendingOwner(); pending {
		return common.NewValidationError(op, "pendingOwner", common.ErrTransferPending)
	}
	call.Emit(
		TransferInitiatedEventType,
		r.address,
		TransferInitiatedEvent{
			Registry:     r.address,
			Owner:        r.Owner(),
			PendingOwner: newOwner,
		},
	)
	call.Apply(
		func() { r.setOwners(r.Owner(), newOwner) },
		func() { r.setOwners(r.Owner(), common.ZeroAddress) },
	)
	return nil
}

// CancelOwnershipTransfer clears a pending transfer. Cancelling when nothing
// is pending succeeds without effect
func (r *Registry) CancelOwnershipTransfer(call *ledger.Call) error {
	const op = "cancelOwnershipTransfer"
	if err := Authorize(r, call.Caller(), op, Owner()); err != nil {
		return err
	}
	pendingOwner, pending := r.PendingOwner()
	if !pending {
		return nil
	}
	call.Emit(
		TransferCancelledEventType,
		r.address,
		TransferCancelledEvent{
			Registry:       r.address,
			Owner:          r.Owner(),
			CancelledOwner: pendingOwner,
		},
	)
	call.Apply(
		func() { r.setOwners(r.Owner(), common.ZeroAddress) },
		func() { r.setOwners(r.Owner(), pendingOwner) },
	)
	return nil
}

// AcceptOwnership completes a pending transfer. Only the pending owner may
// call it
func (r *Registry) AcceptOwnership(call *ledger.Call) error {
	const op = "acceptOwnership"
	pendingOwner, pending := r.PendingOwner()
	if !pending || call.Caller() != pendingOwner {
		return common.NewAuthorizationError(call.Caller(), op, "caller is not the pending owner")
	}
	previousOwner := r.Owner()
	call.Emit(
		OwnershipTransferredEventType,
		r.address,
		OwnershipTransferredEvent{
			Registry:      r.address,
			PreviousOwner: previousOwner,
			NewOwner:      pendingOwner,
		},
	)
	call.Apply(
		func() { r.setOwners(pendingOwner, common.ZeroAddress) },
		func() { r.setOwners(previousOwner, pendingOwner) },
	)
	return nil
}

func (r *Registry) setHolder(role Role, addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holders[role] = addr
}

func (r *Registry) setPausedFlag(role Role, paused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused[role] = paused
}

func (r *Registry) setOwners(owner, pendingOwner common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owner = owner
	r.pendingOwner = pendingOwner
}
