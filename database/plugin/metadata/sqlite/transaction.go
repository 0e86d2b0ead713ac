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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/endaoment/database/types"
	"gorm.io/gorm"
)

// sqliteTxn wraps a GORM transaction and implements types.Txn
type sqliteTxn struct {
	store    *MetadataStoreSqlite
	tx       *gorm.DB
	finished bool
}

// Transaction begins a new read-write transaction
func (d *MetadataStoreSqlite) Transaction() types.Txn {
	return &sqliteTxn{
		store: d,
		tx:    d.DB().Begin(),
	}
}

func (t *sqliteTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.tx.Commit().Error
}

func (t *sqliteTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.tx.Rollback().Error
}

// resolveDB returns the GORM handle to use for txn. A nil txn runs directly
// against the database
func (d *MetadataStoreSqlite) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return d.DB(), nil
	}
	sqlTxn, ok := txn.(*sqliteTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if sqlTxn.store != d {
		return nil, errors.New("transaction from different store")
	}
	if sqlTxn.finished {
		return nil, errors.New("transaction already finished")
	}
	if sqlTxn.tx.Error != nil {
		return nil, sqlTxn.tx.Error
	}
	return sqlTxn.tx, nil
}
