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

package ledger

import (
	"math"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/event"
)

// Call carries the caller identity of a single call and stages its effects
// until the ledger commits it
type Call struct {
	ledger   *Ledger
	balances map[balanceKey]uint64
	nonces   map[common.Address]uint64
	method   string
	events   []event.Event
	deployed []Contract
	hooks    []func()
	undo     []func()
	caller   common.Address
	finished bool
}

func newCall(l *Ledger, caller common.Address, method string) *Call {
	return &Call{
		ledger:   l,
		caller:   caller,
		method:   method,
		balances: make(map[balanceKey]uint64),
		nonces:   make(map[common.Address]uint64),
	}
}

// Caller returns the address that submitted the call
func (c *Call) Caller() common.Address {
	return c.caller
}

// Method returns the name the call was submitted under
func (c *Call) Method() string {
	return c.method
}

// BalanceOf returns the balance of token held by holder, including transfers
// staged earlier in this call
func (c *Call) BalanceOf(token, holder common.Address) uint64 {
	key := balanceKey{token: token, holder: holder}
	if amount, ok := c.balances[key]; ok {
		return amount
	}
	return c.ledger.BalanceOf(token, holder)
}

// Transfer stages a transfer of amount of token from one holder to another.
// It fails when the sender balance is too low
func (c *Call) Transfer(token, from, to common.Address, amount uint64) error {
	if c.finished {
		return ErrCallFinished
	}
	if token.IsZero() {
		return common.NewValidationError(c.method, "token", common.ErrZeroAddress)
	}
	if to.IsZero() {
		return common.NewValidationError(c.method, "to", common.ErrZeroAddress)
	}
	fromBalance := c.BalanceOf(token, from)
	if fromBalance < amount {
		return TransferError{
			Err:     ErrInsufficientBalance,
			Token:   token,
			From:    from,
			To:      to,
			Amount:  amount,
			Balance: fromBalance,
		}
	}
	if from == to {
		return nil
	}
	toBalance := c.BalanceOf(token, to)
	if toBalance > math.MaxUint64-amount {
		return TransferError{
			Err:     ErrBalanceOverflow,
			Token:   token,
			From:    from,
			To:      to,
			Amount:  amount,
			Balance: fromBalance,
		}
	}
	c.balances[balanceKey{token: token, holder: from}] = fromBalance - amount
	c.balances[balanceKey{token: token, holder: to}] = toBalance + amount
	return nil
}

// Emit stages an event emitted by the contract at source
func (c *Call) Emit(eventType event.EventType, source common.Address, data any) {
	c.events = append(c.events, event.NewEvent(eventType, source, data))
}

// NewAddress reserves the next contract address for deployer
func (c *Call) NewAddress(deployer common.Address) common.Address {
	nonce, ok := c.nonces[deployer]
	if !ok {
		nonce = c.ledger.nonce(deployer)
	}
	c.nonces[deployer] = nonce + 1
	return common.DeriveAddress(deployer, nonce)
}

// Deploy registers a contract created during this call
func (c *Call) Deploy(contract Contract) {
	c.deployed = append(c.deployed, contract)
}

// Apply runs do right away, so later reads in the same call observe the
// change, and records undo. If the call fails, the recorded undo functions run
// in reverse order and the contract returns to its state before the call
func (c *Call) Apply(do, undo func()) {
	do()
	c.undo = append(c.undo, undo)
}

// OnCommit registers fn to run once the call has been committed
func (c *Call) OnCommit(fn func()) {
	c.hooks = append(c.hooks, fn)
}

func (c *Call) rollback() {
	for i := len(c.undo) - 1; i >= 0; i-- {
		c.undo[i]()
	}
	c.undo = nil
}

// Events returns the events staged so far
func (c *Call) Events() []event.Event {
	return c.events
}

// Balances returns a reader over committed custody balances. Contracts keep
// it to answer balance queries outside of a call
func (c *Call) Balances() BalanceReader {
	return c.ledger
}
