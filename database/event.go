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

package database

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/database/models"
	"github.com/blinklabs-io/endaoment/database/types"
	"github.com/blinklabs-io/endaoment/event"
	"github.com/fxamacker/cbor/v2"
)

// EventQuery selects journaled events. Zero fields do not filter
type EventQuery struct {
	Type     event.EventType
	Source   common.Address
	AfterSeq uint64
	Limit    int
}

// RegisterPayload records the Go type that payloads of eventType decode into.
// proto may be a value or a pointer to one. Payloads of unregistered types
// decode into generic CBOR values
func (d *Database) RegisterPayload(eventType event.EventType, proto any) {
	t := reflect.TypeOf(proto)
	if t == nil {
		return
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	d.payloadsMu.Lock()
	defer d.payloadsMu.Unlock()
	d.payloads[eventType] = t
}

// AppendEvents persists a batch of committed events in a single transaction
// spanning both stores
func (d *Database) AppendEvents(evts []event.Event) error {
	if len(evts) == 0 {
		return nil
	}
	txn := d.Transaction(true)
	err := txn.Do(func(txn *Txn) error {
		rows := make([]models.Event, 0, len(evts))
		for _, evt := range evts {
			payload, err := cbor.Marshal(evt.Data)
			if err != nil {
				return fmt.Errorf("encode event %d payload: %w", evt.Seq, err)
			}
			if err := d.Blob().Set(
				txn.Blob(),
				types.EventBlobKey(evt.Seq),
				payload,
			); err != nil {
				return fmt.Errorf("store event %d payload: %w", evt.Seq, err)
			}
			rows = append(rows, models.Event{
				Seq:       evt.Seq,
				Type:      string(evt.Type),
				Source:    evt.Source.Bytes(),
				Timestamp: evt.Timestamp,
			})
		}
		return d.Metadata().AddEvents(rows, txn.Metadata())
	})
	if d.metrics != nil {
		if err != nil {
			d.metrics.appends.WithLabelValues("error").Inc()
		} else {
			d.metrics.appends.WithLabelValues("ok").Inc()
			d.metrics.persisted.Add(float64(len(evts)))
		}
	}
	if err != nil {
		d.logger.Error(
			"failed to journal events",
			"component", "database",
			"count", len(evts),
			"first_seq", evts[0].Seq,
			"error", err,
		)
		return err
	}
	return nil
}

// Events returns the journaled events matching query in sequence order
func (d *Database) Events(query EventQuery) ([]event.Event, error) {
	filter := models.EventFilter{
		Type:     string(query.Type),
		AfterSeq: query.AfterSeq,
		Limit:    query.Limit,
	}
	if !query.Source.IsZero() {
		filter.Source = query.Source.Bytes()
	}
	rows, err := d.Metadata().GetEvents(filter)
	if err != nil {
		return nil, err
	}
	txn := d.Transaction(false)
	defer txn.Release()
	ret := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		evt, err := d.loadEvent(txn, row)
		if err != nil {
			return nil, err
		}
		ret = append(ret, evt)
	}
	return ret, nil
}

// Event returns the journaled event with the given sequence number
func (d *Database) Event(seq uint64) (event.Event, error) {
	row, err := d.Metadata().GetEvent(seq)
	if err != nil {
		return event.Event{}, err
	}
	txn := d.Transaction(false)
	defer txn.Release()
	return d.loadEvent(txn, row)
}

// LastSeq returns the sequence number of the last journaled event, or 0 if
// the journal is empty
func (d *Database) LastSeq() (uint64, error) {
	return d.Metadata().LastEventSeq()
}

// EventCounts returns the number of journaled events per event type
func (d *Database) EventCounts() (map[event.EventType]int64, error) {
	counts, err := d.Metadata().CountEventsByType()
	if err != nil {
		return nil, err
	}
	ret := make(map[event.EventType]int64, len(counts))
	for k, v := range counts {
		ret[event.EventType(k)] = v
	}
	return ret, nil
}

func (d *Database) loadEvent(txn *Txn, row models.Event) (event.Event, error) {
	if len(row.Source) != common.AddressLength {
		return event.Event{}, fmt.Errorf(
			"event %d: invalid source length %d",
			row.Seq,
			len(row.Source),
		)
	}
	payload, err := d.Blob().Get(txn.Blob(), types.EventBlobKey(row.Seq))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return event.Event{}, fmt.Errorf(
				"event %d payload missing: %w",
				row.Seq,
				err,
			)
		}
		return event.Event{}, err
	}
	data, err := d.decodePayload(event.EventType(row.Type), payload)
	if err != nil {
		return event.Event{}, fmt.Errorf("decode event %d payload: %w", row.Seq, err)
	}
	var source common.Address
	copy(source[:], row.Source)
	return event.Event{
		Seq:       row.Seq,
		Type:      event.EventType(row.Type),
		Source:    source,
		Timestamp: row.Timestamp,
		Data:      data,
	}, nil
}

func (d *Database) decodePayload(eventType event.EventType, payload []byte) (any, error) {
	d.payloadsMu.RLock()
	t, ok := d.payloads[eventType]
	d.payloadsMu.RUnlock()
	if !ok {
		var ret any
		if err := cbor.Unmarshal(payload, &ret); err != nil {
			return nil, err
		}
		return ret, nil
	}
	v := reflect.New(t)
	if err := cbor.Unmarshal(payload, v.Interface()); err != nil {
		return nil, err
	}
	return v.Elem().Interface(), nil
}
