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
	"fmt"
	"sync"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/ledger"
)

// ErrNotRegistry is returned when an address does not hold a registry
var ErrNotRegistry = fmt.Errorf("not a registry contract: %w", common.ErrNotFound)

// ContractLookup finds deployed contracts by address
type ContractLookup interface {
	Contract(common.Address) (ledger.Contract, bool)
}

// Lookup resolves addr to a deployed registry
func Lookup(contracts ContractLookup, addr common.Address) (*Registry, error) {
	if addr.IsZero() {
		return nil, common.NewValidationError("lookupRegistry", "address", common.ErrZeroAddress)
	}
	c, ok := contracts.Contract(addr)
	if !ok {
		return nil, common.NewValidationError("lookupRegistry", addr.String(), ErrNotRegistry)
	}
	reg, ok := c.(*Registry)
	if !ok {
		return nil, common.NewValidationError("lookupRegistry", addr.String(), ErrNotRegistry)
	}
	return reg, nil
}

// Binding is a reassignable reference to a registry. Contracts that embed it
// let the current ADMIN move them, and everything resolving the registry
// through them, onto another registry
type Binding struct {
	contract common.Address
	current  Reader
	mu       sync.RWMutex
}

// NewBinding binds contract to reader. A nil reader or one without an
// address is rejected
func NewBinding(contract common.Address, reader Reader) (*Binding, error) {
	if reader == nil || reader.Address().IsZero() {
		return nil, common.NewValidationError("bindRegistry", "registry", common.ErrZeroAddress)
	}
	return &Binding{
		contract: contract,
		current:  reader,
	}, nil
}

// Registry returns the registry currently bound
func (b *Binding) Registry() Reader {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// EndaomentAdmin returns the address of the registry currently bound
func (b *Binding) EndaomentAdmin() common.Address {
	return b.Registry().Address()
}

// UpdateEndaomentAdmin rebinds to next. Only the ADMIN of the current
// registry may do so, and next must have an ADMIN assigned
func (b *Binding) UpdateEndaomentAdmin(call *ledger.Call, next Reader) error {
	const op = "updateEndaomentAdmin"
	current := b.Registry()
	if err := Authorize(current, call.Caller(), op, Holder(RoleAdmin)); err != nil {
		return err
	}
	if next == nil || next.Address().IsZero() {
		return common.NewValidationError(op, "registry", common.ErrZeroAddress)
	}
	if _, err := next.RoleAddress(RoleAdmin); err != nil {
		return fmt.Errorf("%s: new registry: %w", op, err)
	}
	call.Emit(
		EndaomentAdminChangedEventType,
		b.contract,
		EndaomentAdminChangedEvent{
			Contract:         b.contract,
			PreviousRegistry: current.Address(),
			NewRegistry:      next.Address(),
		},
	)
	call.Apply(
		func() { b.bind(next) },
		func() { b.bind(current) },
	)
	return nil
}

func (b *Binding) bind(reader Reader) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = reader
}
