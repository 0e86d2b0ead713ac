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
	"fmt"

	"github.com/blinklabs-io/endaoment/database/models"
	"github.com/blinklabs-io/endaoment/database/types"
)

// AddEvents indexes journaled events
func (d *MetadataStoreSqlite) AddEvents(
	evts []models.Event,
	txn types.Txn,
) error {
	if len(evts) == 0 {
		return nil
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(&evts); result.Error != nil {
		return fmt.Errorf("create events: %w", result.Error)
	}
	if d.metrics != nil {
		d.metrics.eventsIndexed.Add(float64(len(evts)))
	}
	return nil
}

// GetEvents returns the indexed events matching filter in sequence order
func (d *MetadataStoreSqlite) GetEvents(
	filter models.EventFilter,
) ([]models.Event, error) {
	var ret []models.Event
	query := d.DB().Model(&models.Event{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if len(filter.Source) > 0 {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.AfterSeq > 0 {
		query = query.Where("seq > ?", filter.AfterSeq)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if result := query.Order("seq").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetEvent returns the indexed event with the given sequence number
func (d *MetadataStoreSqlite) GetEvent(seq uint64) (models.Event, error) {
	var ret models.Event
	result := d.DB().Where("seq = ?", seq).Limit(1).Find(&ret)
	if result.Error != nil {
		return ret, result.Error
	}
	if result.RowsAffected == 0 {
		return ret, models.ErrEventNotFound
	}
	return ret, nil
}

// LastEventSeq returns the greatest indexed sequence number, or 0
func (d *MetadataStoreSqlite) LastEventSeq() (uint64, error) {
	var seq uint64
	result := d.DB().
		Model(&models.Event{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&seq)
	if result.Error != nil {
		return 0, result.Error
	}
	return seq, nil
}

// CountEventsByType returns the number of indexed events per type
func (d *MetadataStoreSqlite) CountEventsByType() (map[string]int64, error) {
	var rows []struct {
		Type  string
		Count int64
	}
	result := d.DB().
		Model(&models.Event{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	ret := make(map[string]int64, len(rows))
	for _, row := range rows {
		ret[row.Type] = row.Count
	}
	return ret, nil
}
