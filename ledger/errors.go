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
	"errors"
	"fmt"

	"github.com/blinklabs-io/endaoment/common"
)

var (
	ErrInsufficientBalance = errors.New("transfer amount exceeds balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrCallFinished        = errors.New("call already finished")
)

// TransferError describes a failed token transfer. It matches
// common.ErrInvalid so callers can treat it as a validation failure
type TransferError struct {
	Err     error
	Token   common.Address
	From    common.Address
	To      common.Address
	Amount  uint64
	Balance uint64
}

func (e TransferError) Error() string {
	return fmt.Sprintf(
		"transfer of %d of token %s from %s to %s failed (balance %d): %s",
		e.Amount,
		e.Token,
		e.From,
		e.To,
		e.Balance,
		e.Err,
	)
}

func (e TransferError) Unwrap() error {
	return e.Err
}

func (e TransferError) Is(target error) bool {
	return target == common.ErrInvalid
}
