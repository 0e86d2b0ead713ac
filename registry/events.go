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
	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/event"
)

const (
	RoleModifiedEventType          event.EventType = "registry.role_modified"
	RolePausedEventType            event.EventType = "registry.role_paused"
	RoleUnpausedEventType          event.EventType = "registry.role_unpaused"
	TransferInitiatedEventType     event.EventType = "registry.transfer_initiated"
	TransferCancelledEventType     event.EventType = "registry.transfer_cancelled"
	OwnershipTransferredEventType  event.EventType = "registry.ownership_transferred"
	EndaomentAdminChangedEventType event.EventType = "registry.endaoment_admin_changed"
)

// RoleModifiedEvent is emitted when a role is set or removed. Account is the
// zero address after a removal
type RoleModifiedEvent struct {
	Registry common.Address
	Account  common.Address
	Role     Role
	Paused   bool
}

// RolePauseEvent is emitted for both RolePaused and RoleUnpaused
type RolePauseEvent struct {
	Registry common.Address
	Account  common.Address
	Role     Role
	Paused   bool
}

type TransferInitiatedEvent struct {
	Registry     common.Address
	Owner        common.Address
	PendingOwner common.Address
}

type TransferCancelledEvent struct {
	Registry       common.Address
	Owner          common.Address
	CancelledOwner common.Address
}

type OwnershipTransferredEvent struct {
	Registry      common.Address
	PreviousOwner common.Address
	NewOwner      common.Address
}

// EndaomentAdminChangedEvent is emitted by a contract that was moved onto
// another registry
type EndaomentAdminChangedEvent struct {
	Contract         common.Address
	PreviousRegistry common.Address
	NewRegistry      common.Address
}
