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
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/blinklabs-io/endaoment/ledger"

// Contract is implemented by every deployed contract
type Contract interface {
	Address() common.Address
}

// BalanceReader reads committed custody balances
type BalanceReader interface {
	BalanceOf(token, holder common.Address) uint64
}

type LedgerConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Journal      Journal
	// LastSeq is the sequence number of the last event already in Journal.
	// Events of the first committed call are numbered from LastSeq+1
	LastSeq uint64
}

type balanceKey struct {
	token  common.Address
	holder common.Address
}

// Ledger is the execution environment for contracts. It serializes calls,
// holds token custody balances and the deployed contract set, and commits the
// effects of a call only when the call succeeds
type Ledger struct {
	config    LedgerConfig
	logger    *slog.Logger
	eventBus  *event.EventBus
	journal   Journal
	metrics   *ledgerMetrics
	balances  map[balanceKey]uint64
	contracts map[common.Address]Contract
	nonces    map[common.Address]uint64
	lastSeq   uint64
	callMu    sync.Mutex
	stateMu   sync.RWMutex
}

func NewLedger(cfg LedgerConfig) *Ledger {
	l := &Ledger{
		config:    cfg,
		eventBus:  cfg.EventBus,
		journal:   cfg.Journal,
		balances:  make(map[balanceKey]uint64),
		contracts: make(map[common.Address]Contract),
		nonces:    make(map[common.Address]uint64),
		lastSeq:   cfg.LastSeq,
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		l.logger = cfg.Logger
	}
	if cfg.PromRegistry != nil {
		l.metrics = newLedgerMetrics(cfg.PromRegistry)
	}
	return l
}

// Execute runs fn as a single call made by caller. The effects staged on the
// Call (transfers, deployments, events and commit hooks) are applied only if
// fn returns nil. Contract changes made through Call.Apply are undone when the
// call fails. Calls are executed one at a time in submission order
func (l *Ledger) Execute(
	caller common.Address,
	method string,
	fn func(*Call) error,
) error {
	l.callMu.Lock()
	defer l.callMu.Unlock()
	start := time.Now()
	_, span := otel.Tracer(tracerName).Start(context.Background(), method)
	defer span.End()
	span.SetAttributes(attribute.String("endaoment.caller", caller.String()))
	call := newCall(l, caller, method)
	err := fn(call)
	if err == nil {
		err = l.commit(call)
	}
	if err != nil {
		call.rollback()
	}
	call.finished = true
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("endaoment.events", len(call.events)))
	}
	if l.metrics != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		l.metrics.calls.WithLabelValues(method, result).Inc()
		l.metrics.callDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		l.logger.Debug(
			"call failed",
			"component", "ledger",
			"method", method,
			"caller", caller.String(),
			"error", err,
		)
		return err
	}
	l.logger.Debug(
		"call committed",
		"component", "ledger",
		"method", method,
		"caller", caller.String(),
		"events", len(call.events),
	)
	return nil
}

func (l *Ledger) commit(call *Call) error {
	evts := call.events
	for i := range evts {
		evts[i].Seq = l.lastSeq + uint64(i) + 1
	}
	if l.journal != nil && len(evts) > 0 {
		if err := l.journal.AppendEvents(evts); err != nil {
			return fmt.Errorf("journal events: %w", err)
		}
	}
	l.lastSeq += uint64(len(evts))
	l.stateMu.Lock()
	for key, amount := range call.balances {
		if amount == 0 {
			delete(l.balances, key)
			continue
		}
		l.balances[key] = amount
	}
	for deployer, nonce := range call.nonces {
		l.nonces[deployer] = nonce
	}
	for _, contract := range call.deployed {
		l.contracts[contract.Address()] = contract
	}
	l.stateMu.Unlock()
	for _, hook := range call.hooks {
		hook()
	}
	if l.metrics != nil {
		l.metrics.events.Add(float64(len(evts)))
		l.metrics.contracts.Set(float64(l.ContractCount()))
	}
	if l.eventBus != nil {
		for _, evt := range evts {
			l.eventBus.Publish(evt)
		}
	}
	return nil
}

// BalanceOf returns the committed balance of token held by holder
func (l *Ledger) BalanceOf(token, holder common.Address) uint64 {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return l.balances[balanceKey{token: token, holder: holder}]
}

// Mint credits amount of token to holder. It stands in for deposits made
// through the external token contract
func (l *Ledger) Mint(token, to common.Address, amount uint64) error {
	if token.IsZero() {
		return common.NewValidationError("mint", "token", common.ErrZeroAddress)
	}
	if to.IsZero() {
		return common.NewValidationError("mint", "to", common.ErrZeroAddress)
	}
	l.callMu.Lock()
	defer l.callMu.Unlock()
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	key := balanceKey{token: token, holder: to}
	if l.balances[key] > math.MaxUint64-amount {
		return TransferError{
			Err:     ErrBalanceOverflow,
			Token:   token,
			To:      to,
			Amount:  amount,
			Balance: l.balances[key],
		}
	}
	l.balances[key] += amount
	return nil
}

// Contract returns the deployed contract at addr
func (l *Ledger) Contract(addr common.Address) (Contract, bool) {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	c, ok := l.contracts[addr]
	return c, ok
}

func (l *Ledger) ContractCount() int {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return len(l.contracts)
}

// LastSeq returns the sequence number of the last committed event
func (l *Ledger) LastSeq() uint64 {
	l.callMu.Lock()
	defer l.callMu.Unlock()
	return l.lastSeq
}

func (l *Ledger) nonce(deployer common.Address) uint64 {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return l.nonces[deployer]
}
