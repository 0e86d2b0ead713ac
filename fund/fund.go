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

package fund

import (
	"sync"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/blinklabs-io/endaoment/registry"
	"github.com/google/uuid"
)

// AllowList answers whether an address is an org allowed to receive grants
type AllowList interface {
	Address() common.Address
	AllowedOrg(common.Address) bool
}

// Summary is the result of Fund.Summary
type Summary struct {
	Balance uint64
	Manager common.Address
}

// Fund escrows donor value on behalf of a manager and pays it out as grants
type Fund struct {
	address     common.Address
	factory     common.Address
	provider    registry.Provider
	balances    ledger.BalanceReader
	manager     common.Address
	pending     map[uuid.UUID]Grant
	grantsCount int
	mu          sync.RWMutex
}

// New deploys a fund outside of a factory. The caller must hold ADMIN or
// FUND_FACTORY on the registry resolved through provider
func New(
	call *ledger.Call,
	manager common.Address,
	provider registry.Provider,
) (*Fund, error) {
	const op = "deployFund"
	if provider == nil {
		return nil, common.NewValidationError(op, "registry", common.ErrZeroAddress)
	}
	if err := registry.Authorize(
		provider.Registry(),
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.Holder(registry.RoleFundFactory),
	); err != nil {
		return nil, err
	}
	return newFund(call, call.Caller(), common.ZeroAddress, manager, provider)
}

func newFund(
	call *ledger.Call,
	deployer common.Address,
	factory common.Address,
	manager common.Address,
	provider registry.Provider,
) (*Fund, error) {
	const op = "deployFund"
	if err := common.RequireAddress(op, "manager", manager); err != nil {
		return nil, err
	}
	reg := provider.Registry()
	if reg == nil {
		return nil, common.NewValidationError(op, "registry", common.ErrZeroAddress)
	}
	if _, err := reg.RoleAddress(registry.RoleAdmin); err != nil {
		return nil, err
	}
	f := &Fund{
		address:  call.NewAddress(deployer),
		factory:  factory,
		provider: provider,
		balances: call.Balances(),
		manager:  manager,
		pending:  make(map[uuid.UUID]Grant),
	}
	call.Deploy(f)
	return f, nil
}

func (f *Fund) Address() common.Address {
	return f.address
}

// Factory returns the factory that deployed the fund, or the zero address
func (f *Fund) Factory() common.Address {
	return f.factory
}

// Registry resolves the registry currently governing the fund
func (f *Fund) Registry() registry.Reader {
	return f.provider.Registry()
}

func (f *Fund) Manager() common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.manager
}

// ChangeManager replaces the fund manager. Callable by ADMIN, or by REVIEWER
// while REVIEWER is not paused
func (f *Fund) ChangeManager(call *ledger.Call, newManager common.Address) error {
	const op = "changeManager"
	if err := registry.Authorize(
		f.Registry(),
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.ActiveHolder(registry.RoleReviewer),
	); err != nil {
		return err
	}
	if err := common.RequireAddress(op, "newManager", newManager); err != nil {
		return err
	}
	previous := f.Manager()
	call.Emit(
		ManagerChangedEventType,
		f.address,
		ManagerChangedEvent{
			Fund:            f.address,
			PreviousManager: previous,
			NewManager:      newManager,
		},
	)
	call.Apply(
		func() { f.setManager(newManager) },
		func() { f.setManager(previous) },
	)
	return nil
}

func (f *Fund) setManager(manager common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manager = manager
}

// CheckRecipient reports whether recipient is allowed by allowList
func (f *Fund) CheckRecipient(recipient common.Address, allowList AllowList) (bool, error) {
	const op = "checkRecipient"
	if err := common.RequireAddress(op, "recipient", recipient); err != nil {
		return false, err
	}
	if allowList == nil || allowList.Address().IsZero() {
		return false, common.NewValidationError(op, "orgFactory", common.ErrZeroAddress)
	}
	return allowList.AllowedOrg(recipient), nil
}

// CreateGrant records a pending grant. Only the manager may create grants
func (f *Fund) CreateGrant(
	call *ledger.Call,
	id uuid.UUID,
	description string,
	value uint64,
	recipient common.Address,
	allowList AllowList,
) error {
	const op = "createGrant"
	if call.Caller().IsZero() || call.Caller() != f.Manager() {
		return common.NewAuthorizationError(call.Caller(), op, "caller is not the fund manager")
	}
	if id == uuid.Nil {
		return common.NewValidationError(op, "id", common.ErrEmptyField)
	}
	if !f.Grant(id).IsZero() {
		return common.NewValidationError(op, id.String(), common.ErrDuplicateID)
	}
	if err := common.RequireString(op, "description", description); err != nil {
		return err
	}
	if value == 0 {
		return common.NewValidationError(op, "value", common.ErrInvalidAmount)
	}
	allowed, err := f.CheckRecipient(recipient, allowList)
	if err != nil {
		return err
	}
	if !allowed {
		return common.NewValidationError(op, recipient.String(), ErrRecipientNotAllowed)
	}
	grant := Grant{
		ID:          id,
		Description: description,
		Value:       value,
		Recipient:   recipient,
	}
	call.Emit(
		GrantCreatedEventType,
		f.address,
		GrantCreatedEvent{
			Fund:  f.address,
			Grant: grant,
		},
	)
	call.Apply(
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.pending[id] = grant
			f.grantsCount++
		},
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.pending, id)
			f.grantsCount--
		},
	)
	return nil
}

// FinalizeGrant pays out a pending grant in token. The recipient receives the
// value minus the skim, which goes to the ADMIN resolved at this point.
// Callable by ADMIN or ACCOUNTANT
func (f *Fund) FinalizeGrant(call *ledger.Call, id uuid.UUID, token common.Address) error {
	const op = "finalizeGrant"
	reg := f.Registry()
	if err := registry.Authorize(
		reg,
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.Holder(registry.RoleAccountant),
	); err != nil {
		return err
	}
	if err := common.RequireAddress(op, "token", token); err != nil {
		return err
	}
	grant := f.Grant(id)
	if grant.IsZero() {
		return common.NewValidationError(op, id.String(), ErrGrantNotFound)
	}
	admin, err := reg.RoleAddress(registry.RoleAdmin)
	if err != nil {
		return err
	}
	skim := Skim(grant.Value)
	delivered := grant.Value - skim
	if err := call.Transfer(token, f.address, grant.Recipient, delivered); err != nil {
		return err
	}
	if err := call.Transfer(token, f.address, admin, skim); err != nil {
		return err
	}
	pending := grant
	grant.Complete = true
	call.Emit(
		GrantFinalizedEventType,
		f.address,
		GrantFinalizedEvent{
			Fund:      f.address,
			Token:     token,
			Admin:     admin,
			Grant:     grant,
			Skim:      skim,
			Delivered: delivered,
		},
	)
	call.Apply(
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.pending, id)
		},
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.pending[id] = pending
		},
	)
	return nil
}

// Summary returns the fund balance of token and its manager
func (f *Fund) Summary(token common.Address) (Summary, error) {
	if err := common.RequireAddress("getSummary", "token", token); err != nil {
		return Summary{}, err
	}
	return Summary{
		Balance: f.balances.BalanceOf(token, f.address),
		Manager: f.Manager(),
	}, nil
}

// Grant returns the pending grant with the given id. Unknown and finalized
// ids return the zero Grant
func (f *Fund) Grant(id uuid.UUID) Grant {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pending[id]
}

// GrantsCount returns the number of grants ever created by the fund
func (f *Fund) GrantsCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.grantsCount
}

// PendingGrants returns the number of grants awaiting finalization
func (f *Fund) PendingGrants() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.pending)
}
