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

package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/database"
	"github.com/blinklabs-io/endaoment/event"
	"github.com/spf13/cobra"
)

type eventsFlags struct {
	eventType string
	source    string
	afterSeq  uint64
	limit     int
	counts    bool
}

func eventsCommand() *cobra.Command {
	flags := eventsFlags{}
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the persisted event journal as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCommand(cmd)
			logger := commonRun(cfg)
			query := database.EventQuery{
				Type:     event.EventType(flags.eventType),
				AfterSeq: flags.afterSeq,
				Limit:    flags.limit,
			}
			if flags.source != "" {
				source, err := common.NewAddress(flags.source)
				if err != nil {
					return fmt.Errorf("invalid --source: %w", err)
				}
				query.Source = source
			}
			tr, err := newTreasury(cfg, logger)
			if err != nil {
				return err
			}
			defer tr.Close()
			enc := json.NewEncoder(cmd.OutOrStdout())
			if flags.counts {
				return printEventCounts(tr.Database(), enc)
			}
			evts, err := tr.Database().Events(query)
			if err != nil {
				return err
			}
			for _, evt := range evts {
				if err := enc.Encode(evt); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.eventType, "type", "", "only show events of this type")
	cmd.Flags().StringVar(&flags.source, "source", "", "only show events emitted by this contract address")
	cmd.Flags().Uint64Var(&flags.afterSeq, "after", 0, "only show events after this sequence number")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "maximum number of events to show")
	cmd.Flags().BoolVar(&flags.counts, "counts", false, "show the number of events per type instead")
	return cmd
}

func printEventCounts(db *database.Database, enc *json.Encoder) error {
	counts, err := db.EventCounts()
	if err != nil {
		return err
	}
	types := make([]event.EventType, 0, len(counts))
	for eventType := range counts {
		types = append(types, eventType)
	}
	slices.Sort(types)
	for _, eventType := range types {
		err := enc.Encode(struct {
			Type  event.EventType `json:"type"`
			Count int64           `json:"count"`
		}{eventType, counts[eventType]})
		if err != nil {
			return err
		}
	}
	return nil
}
