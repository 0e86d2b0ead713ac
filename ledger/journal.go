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
	"slices"
	"sync"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/event"
)

// Journal durably records the events of committed calls. AppendEvents is
// called before any state of the call is applied, so an error aborts the call
type Journal interface {
	AppendEvents([]event.Event) error
}

// MemoryJournal keeps committed events in memory
type MemoryJournal struct {
	events []event.Event
	mu     sync.RWMutex
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) AppendEvents(evts []event.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, evts...)
	return nil
}

// Events returns a copy of all recorded events in commit order
func (j *MemoryJournal) Events() []event.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return slices.Clone(j.events)
}

// EventsByType returns the recorded events of the given type
func (j *MemoryJournal) EventsByType(eventType event.EventType) []event.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var ret []event.Event
	for _, evt := range j.events {
		if evt.Type == eventType {
			ret = append(ret, evt)
		}
	}
	return ret
}

// EventsBySource returns the recorded events emitted by the given contract
func (j *MemoryJournal) EventsBySource(source common.Address) []event.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var ret []event.Event
	for _, evt := range j.events {
		if evt.Source == source {
			ret = append(ret, evt)
		}
	}
	return ret
}

// Last returns the most recent event, if any
func (j *MemoryJournal) Last() (event.Event, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.events) == 0 {
		return event.Event{}, false
	}
	return j.events[len(j.events)-1], true
}
