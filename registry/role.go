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
	"fmt"
	"strings"
)

// Role is a named permission slot. The numeric values are stable and match
// the indexes used by deployment tooling
type Role uint8

const (
	RoleEmpty       Role = 0
	RolePauser      Role = 1
	RoleAccountant  Role = 2
	RoleReviewer    Role = 3
	RoleFundFactory Role = 4
	RoleOrgFactory  Role = 5
	RoleAdmin       Role = 6

	roleCount = 7
)

// DeploymentOrder is the sequence in which roles are assigned after a
// registry is deployed
var DeploymentOrder = []Role{
	RoleAdmin,
	RolePauser,
	RoleAccountant,
	RoleReviewer,
	RoleFundFactory,
	RoleOrgFactory,
}

// Valid reports whether r names an assignable role
func (r Role) Valid() bool {
	switch r {
	case RolePauser,
		RoleAccountant,
		RoleReviewer,
		RoleFundFactory,
		RoleOrgFactory,
		RoleAdmin:
		return true
	case RoleEmpty:
		return false
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleEmpty:
		return "EMPTY"
	case RolePauser:
		return "PAUSER"
	case RoleAccountant:
		return "ACCOUNTANT"
	case RoleReviewer:
		return "REVIEWER"
	case RoleFundFactory:
		return "FUND_FACTORY"
	case RoleOrgFactory:
		return "ORG_FACTORY"
	case RoleAdmin:
		return "ADMIN"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// ParseRole accepts role names case-insensitively, with either '_' or '-'
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, r := range DeploymentOrder {
		if r.String() == name {
			return r, nil
		}
	}
	return RoleEmpty, fmt.Errorf("unknown role: %q", s)
}
