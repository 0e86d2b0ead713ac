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
	"fmt"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/google/uuid"
)

const (
	MinEIN = 10_000_000
	MaxEIN = 999_999_999
)

var ErrClaimNotFound = fmt.Errorf("claim %w", common.ErrNotFound)

// Claim is a request to become the wallet controlling an org
type Claim struct {
	FirstName      string
	LastName       string
	Email          string
	ID             uuid.UUID
	DesiredWallet  common.Address
	FilesSubmitted bool
}

// IsZero reports whether c is the empty record returned for unknown ids
func (c Claim) IsZero() bool {
	return c == Claim{}
}

// ValidateEIN checks that ein is within [MinEIN, MaxEIN]
func ValidateEIN(ein uint64) error {
	if ein < MinEIN || ein > MaxEIN {
		return common.NewValidationError("validateEIN", "ein", common.ErrInvalidEIN)
	}
	return nil
}
