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
)

// Factory deploys funds bound to its registry and keeps them in deployment
// order. Funds resolve their registry through the factory, so rebinding the
// factory moves every fund it deployed
type Factory struct {
	*registry.Binding
	address common.Address
	funds   []*Fund
	mu      sync.RWMutex
}

// NewFactory deploys a fund factory bound to reg
func NewFactory(call *ledger.Call, reg registry.Reader) (*Factory, error) {
	address := call.NewAddress(call.Caller())
	binding, err := registry.NewBinding(address, reg)
	if err != nil {
		return nil, err
	}
	f := &Factory{
		Binding: binding,
		address: address,
	}
	call.Deploy(f)
	return f, nil
}

func (f *Factory) Address() common.Address {
	return f.address
}

// CreateFund deploys a fund managed by manager. Callable by ADMIN, or by
// ACCOUNTANT while ACCOUNTANT is not paused
func (f *Factory) CreateFund(call *ledger.Call, manager common.Address) (*Fund, error) {
	const op = "createFund"
	if err := registry.Authorize(
		f.Registry(),
		call.Caller(),
		op,
		registry.Holder(registry.RoleAdmin),
		registry.ActiveHolder(registry.RoleAccountant),
	); err != nil {
		return nil, err
	}
	fund, err := newFund(call, f.address, f.address, manager, f)
	if err != nil {
		return nil, err
	}
	call.Emit(
		FundCreatedEventType,
		f.address,
		FundCreatedEvent{
			Factory: f.address,
			Fund:    fund.Address(),
			Manager: manager,
		},
	)
	call.Apply(
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.funds = append(f.funds, fund)
		},
		func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.funds = f.funds[:len(f.funds)-1]
		},
	)
	return fund, nil
}

// Count returns the number of funds deployed by the factory
func (f *Factory) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.funds)
}

// Deployed returns the address of the fund at index
func (f *Factory) Deployed(index int) (common.Address, error) {
	fund, err := f.Fund(index)
	if err != nil {
		return common.ZeroAddress, err
	}
	return fund.Address(), nil
}

// Fund returns the fund at index
func (f *Factory) Fund(index int) (*Fund, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if index < 0 || index >= len(f.funds) {
		return nil, common.NewValidationError("getDeployedFund", "index", common.ErrOutOfRange)
	}
	return f.funds[index], nil
}
