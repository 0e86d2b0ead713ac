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
	"strings"

	"github.com/blinklabs-io/endaoment/common"
)

type principalKind uint8

const (
	principalOwner principalKind = iota + 1
	principalHolder
	principalActiveHolder
)

// Principal describes one party allowed to perform an operation
type Principal struct {
	kind principalKind
	role Role
}

// Owner matches the registry owner
func Owner() Principal {
	return Principal{kind: principalOwner}
}

// Holder matches the holder of role, whether or not the role is paused
func Holder(role Role) Principal {
	return Principal{kind: principalHolder, role: role}
}

// ActiveHolder matches the holder of role while the role is not paused
func ActiveHolder(role Role) Principal {
	return Principal{kind: principalActiveHolder, role: role}
}

func (p Principal) String() string {
	switch p.kind {
	case principalOwner:
		return "OWNER"
	case principalHolder:
		return p.role.String()
	case principalActiveHolder:
		return p.role.String() + " (unpaused)"
	default:
		return "unknown"
	}
}

// Authorize checks caller against principals in order and succeeds on the
// first match. The four patterns used across the contracts are
//
//	only OWNER:                     Authorize(r, c, op, Owner())
//	only ROLE_X:                    Authorize(r, c, op, Holder(X))
//	OWNER or ROLE_X:                Authorize(r, c, op, Owner(), Holder(X))
//	OWNER or ROLE_X unless paused:  Authorize(r, c, op, Owner(), ActiveHolder(X))
//
// Role principals may be combined freely, e.g. Holder(RoleAdmin),
// ActiveHolder(RoleAccountant)
func Authorize(
	reader Reader,
	caller common.Address,
	operation string,
	principals ...Principal,
) error {
	if reader == nil {
		return common.NewValidationError(operation, "registry", common.ErrZeroAddress)
	}
	var pausedRole *Role
	for _, p := range principals {
		switch p.kind {
		case principalOwner:
			if reader.IsOwner(caller) {
				return nil
			}
		case principalHolder:
			if reader.IsRole(p.role, caller) {
				return nil
			}
		case principalActiveHolder:
			if reader.IsRole(p.role, caller) {
				if !reader.IsPaused(p.role) {
					return nil
				}
				role := p.role
				pausedRole = &role
			}
		default:
			return common.NewAuthorizationError(
				caller,
				operation,
				"unknown principal",
			)
		}
	}
	if pausedRole != nil {
		return common.NewAuthorizationError(
			caller,
			operation,
			"role "+pausedRole.String()+" is paused",
		)
	}
	names := make([]string, 0, len(principals))
	for _, p := range principals {
		names = append(names, p.String())
	}
	return common.NewAuthorizationError(
		caller,
		operation,
		"requires "+strings.Join(names, " or "),
	)
}
