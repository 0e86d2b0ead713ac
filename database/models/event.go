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

package models

import (
	"errors"
	"time"
)

var ErrEventNotFound = errors.New("event not found")

// Event indexes a journaled contract event. The payload lives in the blob
// store under the event sequence number
type Event struct {
	Timestamp time.Time `gorm:"index"`
	Type      string    `gorm:"index;size:64;not null"`
	Source    []byte    `gorm:"index;size:20;not null"`
	ID        uint      `gorm:"primarykey"`
	Seq       uint64    `gorm:"uniqueIndex;not null"`
}

func (Event) TableName() string {
	return "event"
}

// EventFilter selects indexed events. Zero fields do not filter
type EventFilter struct {
	Type     string
	Source   []byte
	AfterSeq uint64
	Limit    int
}
