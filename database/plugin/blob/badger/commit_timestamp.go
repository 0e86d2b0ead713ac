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

package badger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/endaoment/database/types"
)

const (
	commitTimestampBlobKey = "journal_commit_timestamp"
)

// GetCommitTimestamp returns the timestamp of the last journal commit, or 0
// when nothing has been committed
func (d *BlobStoreBadger) GetCommitTimestamp() (int64, error) {
	txn := d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck

	val, err := d.Get(txn, []byte(commitTimestampBlobKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("invalid commit timestamp length: %d", len(val))
	}
	return int64(binary.BigEndian.Uint64(val)), nil //nolint:gosec // stored from an int64
}

func (d *BlobStoreBadger) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(timestamp)) //nolint:gosec // timestamps are positive
	return d.Set(txn, []byte(commitTimestampBlobKey), val)
}
