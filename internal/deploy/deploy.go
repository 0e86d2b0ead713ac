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

// Package deploy performs the bootstrap sequence that brings up a registry
// and both factories with every role assigned
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/fund"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/blinklabs-io/endaoment/org"
	"github.com/blinklabs-io/endaoment/registry"
)

var ErrNoLedger = errors.New("no ledger configured")

type Config struct {
	Ledger *ledger.Ledger
	Logger *slog.Logger
	// Owner deploys the registry and every other contract, and assigns roles
	Owner common.Address
	// Roles maps the assignable account roles to their holders. The factory
	// roles are always assigned to the deployed factories. Roles without an
	// entry, or with a zero address, are left unset
	Roles map[registry.Role]common.Address
}

type Deployment struct {
	Registry    *registry.Registry
	FundFactory *fund.Factory
	OrgFactory  *org.Factory
}

type deployer struct {
	cfg    Config
	logger *slog.Logger
	result *Deployment
}

// Bootstrap deploys a registry owned by cfg.Owner, assigns the configured
// roles, deploys the fund and org factories, and grants them FUND_FACTORY
// and ORG_FACTORY. Roles are assigned in registry.DeploymentOrder. Each step
// is its own call, so a failure leaves the steps before it committed
func Bootstrap(ctx context.Context, cfg Config) (*Deployment, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("bootstrap: %w", ErrNoLedger)
	}
	if err := common.RequireAddress("bootstrap", "owner", cfg.Owner); err != nil {
		return nil, err
	}
	d := &deployer{
		cfg:    cfg,
		logger: cfg.Logger,
		result: &Deployment{},
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := d.deployRegistry(ctx); err != nil {
		return nil, err
	}
	for _, role := range registry.DeploymentOrder {
		if err := ctx.Err(); err != nil {
			return d.result, err
		}
		var err error
		switch role {
		case registry.RoleFundFactory:
			err = d.deployFundFactory()
		case registry.RoleOrgFactory:
			err = d.deployOrgFactory()
		default:
			err = d.assignRole(role, cfg.Roles[role])
		}
		if err != nil {
			return d.result, err
		}
	}
	d.logger.Info(
		"contract suite deployed",
		"component", "deploy",
		"registry", d.result.Registry.Address().String(),
		"fund_factory", d.result.FundFactory.Address().String(),
		"org_factory", d.result.OrgFactory.Address().String(),
	)
	return d.result, nil
}

func (d *deployer) execute(method string, fn func(*ledger.Call) error) error {
	if err := d.cfg.Ledger.Execute(d.cfg.Owner, method, fn); err != nil {
		return fmt.Errorf("bootstrap %s: %w", method, err)
	}
	return nil
}

func (d *deployer) deployRegistry(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.execute("deployRegistry", func(call *ledger.Call) error {
		reg, err := registry.New(call)
		if err != nil {
			return err
		}
		d.result.Registry = reg
		return nil
	})
	if err != nil {
		return err
	}
	d.logger.Info(
		"registry deployed",
		"component", "deploy",
		"owner", d.cfg.Owner.String(),
		"address", d.result.Registry.Address().String(),
	)
	return nil
}

func (d *deployer) assignRole(role registry.Role, addr common.Address) error {
	if addr.IsZero() {
		d.logger.Warn(
			"no holder configured, leaving role unset",
			"component", "deploy",
			"role", role.String(),
		)
		return nil
	}
	err := d.execute("setRole", func(call *ledger.Call) error {
		return d.result.Registry.SetRole(call, role, addr)
	})
	if err != nil {
		return err
	}
	d.logger.Info(
		"role set",
		"component", "deploy",
		"role", role.String(),
		"account", addr.String(),
	)
	return nil
}

func (d *deployer) deployFundFactory() error {
	err := d.execute("deployFundFactory", func(call *ledger.Call) error {
		f, err := fund.NewFactory(call, d.result.Registry)
		if err != nil {
			return err
		}
		d.result.FundFactory = f
		return nil
	})
	if err != nil {
		return err
	}
	d.logger.Info(
		"fund factory deployed",
		"component", "deploy",
		"address", d.result.FundFactory.Address().String(),
	)
	return d.assignRole(registry.RoleFundFactory, d.result.FundFactory.Address())
}

func (d *deployer) deployOrgFactory() error {
	err := d.execute("deployOrgFactory", func(call *ledger.Call) error {
		f, err := org.NewFactory(call, d.result.Registry)
		if err != nil {
			return err
		}
		d.result.OrgFactory = f
		return nil
	})
	if err != nil {
		return err
	}
	d.logger.Info(
		"org factory deployed",
		"component", "deploy",
		"address", d.result.OrgFactory.Address().String(),
	)
	return d.assignRole(registry.RoleOrgFactory, d.result.OrgFactory.Address())
}
