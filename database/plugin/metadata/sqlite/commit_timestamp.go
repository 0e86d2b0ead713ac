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
	"github.com/blinklabs-io/endaoment/database/types"
	"gorm.io/gorm/clause"
)

// CommitTimestamp is the single-row table recording when the journal last
// committed. It is compared against the blob store on startup
type CommitTimestamp struct {
	ID        uint `gorm:"primarykey"`
	Timestamp int64
}

func (CommitTimestamp) TableName() string {
	return "commit_timestamp"
}

const commitTimestampRowId = 1

// GetCommitTimestamp returns the last commit timestamp, or 0 if the journal
// has never been written
func (d *MetadataStoreSqlite) GetCommitTimestamp() (int64, error) {
	var rows []CommitTimestamp
	result := d.DB().Where("id = ?", commitTimestampRowId).Limit(1).Find(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Timestamp, nil
}

func (d *MetadataStoreSqlite) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp"}),
	}).Create(&CommitTimestamp{
		ID:        commitTimestampRowId,
		Timestamp: timestamp,
	})
	return result.Error
}
