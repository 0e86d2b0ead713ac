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
	"fmt"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/internal/config"
	"github.com/blinklabs-io/endaoment/registry"
	"github.com/spf13/cobra"
)

func rolesFromConfig(cfg *config.Config) map[registry.Role]common.Address {
	return map[registry.Role]common.Address{
		registry.RoleAdmin:      cfg.Roles.Admin,
		registry.RolePauser:     cfg.Roles.Pauser,
		registry.RoleAccountant: cfg.Roles.Accountant,
		registry.RoleReviewer:   cfg.Roles.Reviewer,
	}
}

func bootstrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Deploy a registry and both factories, and assign the configured roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromCommand(cmd)
			logger := commonRun(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			tr, err := newTreasury(cfg, logger)
			if err != nil {
				return err
			}
			defer tr.Close()
			d, err := tr.Bootstrap(cmd.Context(), cfg.Owner, rolesFromConfig(cfg))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "registry:     %s\n", d.Registry.Address())
			fmt.Fprintf(out, "fund factory: %s\n", d.FundFactory.Address())
			fmt.Fprintf(out, "org factory:  %s\n", d.OrgFactory.Address())
			return nil
		},
	}
	return cmd
}
