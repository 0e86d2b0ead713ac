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

package event

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/prometheus/client_golang/prometheus"
)

const EventQueueSize = 100

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

// Event is a single entry of the contract event log. Seq is assigned by the
// ledger when the call that emitted the event commits
type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
	Source    common.Address
	Seq       uint64
}

func NewEvent(
	eventType EventType,
	source common.Address,
	eventData any,
) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// Subscriber receives published events. Close must be idempotent
type Subscriber interface {
	Deliver(Event) error
	Close()
}

type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{
		ch: make(chan Event, buffer),
	}
}

func (c *channelSubscriber) Deliver(evt Event) (err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel deliver panic: %v", r)
		}
	}()
	c.ch <- evt
	return nil
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]Subscriber
	metrics     *eventMetrics
	logger      *slog.Logger
	funcWg      sync.WaitGroup
	lastSubId   EventSubscriberId
	mu          sync.RWMutex
}

// NewEventBus creates a new EventBus. Both arguments are optional
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]Subscriber),
		logger:      logger,
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if promRegistry != nil {
		e.metrics = newEventMetrics(promRegistry)
	}
	return e
}

// Subscribe allows a consumer to receive events of a particular type via a channel
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	chSub := newChannelSubscriber(EventQueueSize)
	subId := e.RegisterSubscriber(eventType, chSub)
	return subId, chSub.ch
}

// SubscribeFunc allows a consumer to receive events of a particular type via a callback function
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	e.funcWg.Add(1)
	go func() {
		defer e.funcWg.Done()
		for evt := range evtCh {
			e.runHandler(eventType, handlerFunc, evt)
		}
	}()
	return subId
}

func (e *EventBus) runHandler(
	eventType EventType,
	handlerFunc EventHandlerFunc,
	evt Event,
) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(
				"event handler panic",
				"component", "event",
				"type", eventType,
				"panic", r,
			)
		}
	}()
	handlerFunc(evt)
}

// RegisterSubscriber adds a custom subscriber and returns its id
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSubId++
	subId := e.lastSubId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]Subscriber)
	}
	e.subscribers[eventType][subId] = sub
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId
}

// Unsubscribe stops delivery of events for a particular type for an existing subscriber
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	var subToClose Subscriber
	if evtTypeSubs, ok := e.subscribers[eventType]; ok {
		if sub, ok := evtTypeSubs[subId]; ok {
			subToClose = sub
			delete(evtTypeSubs, subId)
			if len(evtTypeSubs) == 0 {
				delete(e.subscribers, eventType)
			}
			if e.metrics != nil {
				e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
			}
		}
	}
	e.mu.Unlock()
	if subToClose != nil {
		subToClose.Close()
	}
}

// Publish delivers an event to every subscriber of its type. A subscriber
// that fails delivery is unregistered
func (e *EventBus) Publish(evt Event) {
	e.mu.RLock()
	subs := e.subscribers[evt.Type]
	type subItem struct {
		sub Subscriber
		id  EventSubscriberId
	}
	subList := make([]subItem, 0, len(subs))
	for id, sub := range subs {
		subList = append(subList, subItem{id: id, sub: sub})
	}
	e.mu.RUnlock()
	for _, item := range subList {
		var deliverErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					deliverErr = fmt.Errorf("subscriber deliver panic: %v", r)
				}
			}()
			deliverErr = item.sub.Deliver(evt)
		}()
		if deliverErr != nil {
			e.Unsubscribe(evt.Type, item.id)
			if e.metrics != nil {
				e.metrics.deliveryErrors.WithLabelValues(string(evt.Type)).Inc()
			}
			e.logger.Debug(
				"event delivery error",
				"component", "event",
				"type", evt.Type,
				"error", deliverErr,
			)
		}
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(evt.Type)).Inc()
	}
}

// Stop closes all subscribers and waits for SubscribeFunc handlers to exit.
// The EventBus can be reused afterward
func (e *EventBus) Stop() {
	e.mu.Lock()
	subsCopy := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]Subscriber)
	e.mu.Unlock()
	for _, evtTypeSubs := range subsCopy {
		for _, sub := range evtTypeSubs {
			sub.Close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
	e.funcWg.Wait()
}
