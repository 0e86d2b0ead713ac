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

package endaoment

import (
	"github.com/blinklabs-io/endaoment/database"
	"github.com/blinklabs-io/endaoment/fund"
	"github.com/blinklabs-io/endaoment/org"
	"github.com/blinklabs-io/endaoment/registry"
)

// registerPayloads teaches db the payload type of every contract event so
// journaled events decode back into the values that were emitted
func registerPayloads(db *database.Database) {
	// Registry
	db.RegisterPayload(registry.RoleModifiedEventType, registry.RoleModifiedEvent{})
	db.RegisterPayload(registry.RolePausedEventType, registry.RolePauseEvent{})
	db.RegisterPayload(registry.RoleUnpausedEventType, registry.RolePauseEvent{})
	db.RegisterPayload(registry.TransferInitiatedEventType, registry.TransferInitiatedEvent{})
	db.RegisterPayload(registry.TransferCancelledEventType, registry.TransferCancelledEvent{})
	db.RegisterPayload(registry.OwnershipTransferredEventType, registry.OwnershipTransferredEvent{})
	db.RegisterPayload(registry.EndaomentAdminChangedEventType, registry.EndaomentAdminChangedEvent{})
	// Funds
	db.RegisterPayload(fund.FundCreatedEventType, fund.FundCreatedEvent{})
	db.RegisterPayload(fund.GrantCreatedEventType, fund.GrantCreatedEvent{})
	db.RegisterPayload(fund.GrantFinalizedEventType, fund.GrantFinalizedEvent{})
	db.RegisterPayload(fund.ManagerChangedEventType, fund.ManagerChangedEvent{})
	// Orgs
	db.RegisterPayload(org.OrgCreatedEventType, org.OrgCreatedEvent{})
	db.RegisterPayload(org.OrgStatusChangedEventType, org.OrgStatusChangedEvent{})
	db.RegisterPayload(org.ClaimCreatedEventType, org.ClaimCreatedEvent{})
	db.RegisterPayload(org.ClaimApprovedEventType, org.ClaimApprovedEvent{})
	db.RegisterPayload(org.CashOutCompleteEventType, org.CashOutCompleteEvent{})
}
