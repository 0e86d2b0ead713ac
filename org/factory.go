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
)

// Factory deploys orgs bound to its registry, keeps them in deployment order
// and maintains the allow-list funds consult when validating grant recipients
type Factory struct {
	*registry.Binding
	address common.Address
	orgs    []*Org
	allowed map[common.Address]bool
	mu      sync.RWMutex
}

// NewFactory deploys an org factory bound to reg
func NewFactory(call *ledger.Call, reg registry.Reader) (*Factory, error) {
	address := call.NewAddress(call.Caller())
	binding, err := registry.NewBinding(address, reg)
	if err != nil {
		return nil, err
	}
	f := &Factory{
		Binding: binding,
		address: address,
		allowed: make(map[common.Address]bool),
	}
	call.Deploy(f)
	return f, nil
}

func (f *Factory) Address() common.Address {
	return f.address
}

// CreateOrg deploys an org for ein. Callable by ADMIN, or by ACCOUNTANT while
// ACCOUNTANT is not paused. New orgs start allowed
func (f *Factory) CreateOrg(call *ledger.Call, ein uint64) (*Org, error) {
	const op = "createOrg"
	if err := registry.Authorize(
		f.Registry(),
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.ActiveHolder(registry.RoleAccountant),
	); err != nil {
		return nil, err
	}
	org, err := newOrg(call, f.address, f.address, ein, f)
	if err != nil {
		return nil, err
	}
	call.Emit(
		OrgCreatedEventType,
		f.address,
		OrgCreatedEvent{
			Factory: f.address,
			Org:     org.Address(),
			EIN:     ein,
		},
	)
	call.Apply(
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.orgs = append(f.orgs, org)
			f.allowed[org.Address()] = true
		},
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.orgs = f.orgs[:len(f.orgs)-1]
			delete(f.allowed, org.Address())
		},
	)
	return org, nil
}

// ToggleOrg flips the allow-list entry for addr. Callable by ADMIN or
// REVIEWER. It has no effect on the org itself
func (f *Factory) ToggleOrg(call *ledger.Call, addr common.Address) error {
	const op = "toggleOrg"
	if err := registry.Authorize(
		f.Registry(),
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.Holder(registry.RoleReviewer),
	); err != nil {
		return err
	}
	if err := common.RequireAddress(op, "org", addr); err != nil {
		return err
	}
	allowed := !f.AllowedOrg(addr)
	call.Emit(
		OrgStatusChangedEventType,
		f.address,
		OrgStatusChangedEvent{
			Factory: f.address,
			Org:     addr,
			Allowed: allowed,
		},
	)
	call.Apply(
		func() { f.setAllowed(addr, allowed) },
		func() { f.setAllowed(addr, !allowed) },
	)
	return nil
}

func (f *Factory) setAllowed(addr common.Address, allowed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if allowed {
		f.allowed[addr] = true
	} else {
		delete(f.allowed, addr)
	}
}

// AllowedOrg reports whether addr is on the allow-list
func (f *Factory) AllowedOrg(addr common.Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.allowed[addr]
}

// Count returns the number of orgs deployed by the factory
func (f *Factory) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.orgs)
}

// Deployed returns the address of the org at index
func (f *Factory) Deployed(index int) (common.Address, error) {
	org, err := f.Org(index)
	if err != nil {
		return common.ZeroAddress, err
	}
	return org.Address(), nil
}

// Org returns the org at index
func (f *Factory) Org(index int) (*Org, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if index < 0 || index >= len(f.orgs) {
		return nil, common.NewValidationError("getDeployedOrg", "index", common.ErrOutOfRange)
	}
	return f.orgs[index], nil
}
