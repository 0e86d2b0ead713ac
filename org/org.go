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

package org

import (
	"sync"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/blinklabs-io/endaoment/registry"
	"github.com/google/uuid"
)

// Org escrows value for a nonprofit until it is cashed out to the wallet of
// the approved claim
type Org struct {
	address     common.Address
	factory     common.Address
	provider    registry.Provider
	balances    ledger.BalanceReader
	ein         uint64
	orgWallet   common.Address
	activeClaim Claim
	pending     map[uuid.UUID]Claim
	claimsCount int
	mu          sync.RWMutex
}

// New deploys an org outside of a factory. The caller must hold ADMIN or
// ORG_FACTORY on the registry resolved through provider
func New(call *ledger.Call, ein uint64, provider registry.Provider) (*Org, error) {
	const op = "deployOrg"
	if provider == nil {
		return nil, common.NewValidationError(op, "registry", common.ErrZeroAddress)
	}
	if err := registry.Authorize(
		provider.Registry(),
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.Holder(registry.RoleOrgFactory),
	); err != nil {
		return nil, err
	}
	return newOrg(call, call.Caller(), common.ZeroAddress, ein, provider)
}

func newOrg(
	call *ledger.Call,
	deployer common.Address,
	factory common.Address,
	ein uint64,
	provider registry.Provider,
) (*Org, error) {
	if err := ValidateEIN(ein); err != nil {
		return nil, err
	}
	o := &Org{
		address:  call.NewAddress(deployer),
		factory:  factory,
		provider: provider,
		balances: call.Balances(),
		ein:      ein,
		pending:  make(map[uuid.UUID]Claim),
	}
	call.Deploy(o)
	return o, nil
}

func (o *Org) Address() common.Address {
	return o.address
}

// Factory returns the factory that deployed the org, or the zero address
func (o *Org) Factory() common.Address {
	return o.factory
}

// Registry resolves the registry currently governing the org
func (o *Org) Registry() registry.Reader {
	return o.provider.Registry()
}

// TaxID returns the EIN the org was created with
func (o *Org) TaxID() uint64 {
	return o.ein
}

// OrgWallet returns the wallet of the approved claim, or the zero address
func (o *Org) OrgWallet() common.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.orgWallet
}

// ActiveClaim returns the most recently approved claim
func (o *Org) ActiveClaim() Claim {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.activeClaim
}

// ClaimRequest records a pending claim. Any caller may submit one, naming
// itself or a third party as the desired wallet
func (o *Org) ClaimRequest(
	call *ledger.Call,
	id uuid.UUID,
	firstName string,
	lastName string,
	email string,
	desiredWallet common.Address,
) error {
	const op = "claimRequest"
	if id == uuid.Nil {
		return common.NewValidationError(op, "id", common.ErrEmptyField)
	}
	if !o.Claim(id).IsZero() {
		return common.NewValidationError(op, id.String(), common.ErrDuplicateID)
	}
	if err := common.RequireString(op, "firstName", firstName); err != nil {
		return err
	}
	if err := common.RequireString(op, "lastName", lastName); err != nil {
		return err
	}
	if err := common.RequireString(op, "email", email); err != nil {
		return err
	}
	if err := common.RequireAddress(op, "desiredWallet", desiredWallet); err != nil {
		return err
	}
	claim := Claim{
		ID:             id,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		DesiredWallet:  desiredWallet,
		FilesSubmitted: true,
	}
	call.Emit(
		ClaimCreatedEventType,
		o.address,
		ClaimCreatedEvent{
			Org:   o.address,
			Claim: claim,
		},
	)
	call.Apply(
		func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.pending[id] = claim
			o.claimsCount++
		},
		func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.pending, id)
			o.claimsCount--
		},
	)
	return nil
}

// ApproveClaim makes the desired wallet of a pending claim the org wallet,
// superseding any earlier claim. Callable by ADMIN or REVIEWER
func (o *Org) ApproveClaim(call *ledger.Call, id uuid.UUID) error {
	const op = "approveClaim"
	if err := registry.Authorize(
		o.Registry(),
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.Holder(registry.RoleReviewer),
	); err != nil {
		return err
	}
	claim := o.Claim(id)
	if claim.IsZero() {
		return common.NewValidationError(op, id.String(), ErrClaimNotFound)
	}
	previousClaim := o.ActiveClaim()
	previousWallet := o.OrgWallet()
	call.Emit(
		ClaimApprovedEventType,
		o.address,
		ClaimApprovedEvent{
			Org:               o.address,
			PreviousOrgWallet: previousWallet,
			Claim:             claim,
		},
	)
	call.Apply(
		func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.activeClaim = claim
			o.orgWallet = claim.DesiredWallet
			delete(o.pending, id)
		},
		func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			o.activeClaim = previousClaim
			o.orgWallet = previousWallet
			o.pending[id] = claim
		},
	)
	return nil
}

// CashOutOrg transfers the whole org balance of token to the org wallet. An
// empty balance is cashed out as a zero amount. Callable by ADMIN or
// ACCOUNTANT
func (o *Org) CashOutOrg(call *ledger.Call, token common.Address) error {
	const op = "cashOutOrg"
	if err := registry.Authorize(
		o.Registry(),
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
	wallet := o.OrgWallet()
	if err := common.RequireAddress(op, "orgWallet", wallet); err != nil {
		return err
	}
	amount := call.BalanceOf(token, o.address)
	if err := call.Transfer(token, o.address, wallet, amount); err != nil {
		return err
	}
	call.Emit(
		CashOutCompleteEventType,
		o.address,
		CashOutCompleteEvent{
			Org:       o.address,
			Token:     token,
			OrgWallet: wallet,
			Amount:    amount,
		},
	)
	return nil
}

// TokenBalance returns the org balance of token
func (o *Org) TokenBalance(token common.Address) uint64 {
	return o.balances.BalanceOf(token, o.address)
}

// Claim returns the pending claim with the given id. Unknown and approved ids
// return the zero Claim
func (o *Org) Claim(id uuid.UUID) Claim {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pending[id]
}

// ClaimsCount returns the number of claims ever submitted to the org
func (o *Org) ClaimsCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.claimsCount
}
