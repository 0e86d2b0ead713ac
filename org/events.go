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
	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/event"
)

const (
	ClaimCreatedEventType     event.EventType = "org.claim_created"
	ClaimApprovedEventType    event.EventType = "org.claim_approved"
	CashOutCompleteEventType  event.EventType = "org.cash_out_complete"
	OrgCreatedEventType       event.EventType = "org.created"
	OrgStatusChangedEventType event.EventType = "org.status_changed"
)

type ClaimCreatedEvent struct {
	Org   common.Address
	Claim Claim
}

// ClaimApprovedEvent carries the approved claim, whose desired wallet is now
// the org wallet
type ClaimApprovedEvent struct {
	Org               common.Address
	PreviousOrgWallet common.Address
	Claim             Claim
}

type CashOutCompleteEvent struct {
	Org       common.Address
	Token     common.Address
	OrgWallet common.Address
	Amount    uint64
}

type OrgCreatedEvent struct {
	Factory common.Address
	Org     common.Address
	EIN     uint64
}

// OrgStatusChangedEvent is emitted when an org is added to or removed from the
// factory allow-list
type OrgStatusChangedEvent struct {
	Factory common.Address
	Org     common.Address
	Allowed bool
}
