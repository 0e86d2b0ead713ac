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
	"fmt"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/google/uuid"
)

// SkimDivisor sets the share of each finalized grant paid to the ADMIN (1%)
const SkimDivisor = 100

var (
	ErrGrantNotFound       = fmt.Errorf("grant %w", common.ErrNotFound)
	ErrRecipientNotAllowed = fmt.Errorf("recipient is not an allowed org: %w", common.ErrNotFound)
)

// Grant is a pending or finalized transfer of escrowed value to an org
type Grant struct {
	Description string
	Value       uint64
	ID          uuid.UUID
	Recipient   common.Address
	Complete    bool
}

// IsZero reports whether g is the empty record returned for unknown ids
func (g Grant) IsZero() bool {
	return g == Grant{}
}

// Skim returns the part of value paid to the ADMIN, rounded down. The
// recipient receives value - Skim(value)
func Skim(value uint64) uint64 {
	return value / SkimDivisor
}
