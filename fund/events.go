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
	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/event"
)

const (
	GrantCreatedEventType   event.EventType = "fund.grant_created"
	GrantFinalizedEventType event.EventType = "fund.grant_finalized"
	ManagerChangedEventType event.EventType = "fund.manager_changed"
	FundCreatedEventType    event.EventType = "fund.created"
)

type GrantCreatedEvent struct {
	Fund  common.Address
	Grant Grant
}

// GrantFinalizedEvent carries the grant as finalized along with where the
// skim went
type GrantFinalizedEvent struct {
	Fund      common.Address
	Token     common.Address
	Admin     common.Address
	Grant     Grant
	Skim      uint64
	Delivered uint64
}

type ManagerChangedEvent struct {
	Fund            common.Address
	PreviousManager common.Address
	NewManager      common.Address
}

type FundCreatedEvent struct {
	Factory common.Address
	Fund    common.Address
	Manager common.Address
}
