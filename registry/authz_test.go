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

package registry_test

import (
	"testing"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/blinklabs-io/endaoment/ledger"
	"github.com/blinklabs-io/endaoment/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAccountant = common.MustAddress("0x00000000000000000000000000000000000000a4")
	testReviewer   = common.MustAddress("0x00000000000000000000000000000000000000a5")
)

func newAuthzRegistry(t *testing.T) (*ledger.Ledger, *registry.Registry) {
	t.Helper()
	l, _, reg := newTestRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		if err := reg.SetRole(c, registry.RoleAdmin, testAdmin); err != nil {
			return err
		}
		if err := reg.SetRole(c, registry.RoleAccountant, testAccountant); err != nil {
			return err
		}
		return reg.SetRole(c, registry.RoleReviewer, testReviewer)
	}))
	return l, reg
}

func TestAuthorize(t *testing.T) {
	l, reg := newAuthzRegistry(t)
	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.Pause(c, registry.RoleReviewer)
	}))
	testDefs := []struct {
		name       string
		caller     common.Address
		principals []registry.Principal
		allowed    bool
	}{
		{
			name:       "owner only, owner",
			caller:     testOwner,
			principals: []registry.Principal{registry.Owner()},
			allowed:    true,
		},
		{
			name:       "owner only, admin",
			caller:     testAdmin,
			principals: []registry.Principal{registry.Owner()},
		},
		{
			name:       "role only, holder",
			caller:     testAdmin,
			principals: []registry.Principal{registry.Holder(registry.RoleAdmin)},
			allowed:    true,
		},
		{
			name:       "role only, owner",
			caller:     testOwner,
			principals: []registry.Principal{registry.Holder(registry.RoleAdmin)},
		},
		{
			name:   "owner or role, holder",
			caller: testAccountant,
			principals: []registry.Principal{
				registry.Owner(),
				registry.Holder(registry.RoleAccountant),
			},
			allowed: true,
		},
		{
			name:   "paused holder ignores pause",
			caller: testReviewer,
			principals: []registry.Principal{
				registry.Holder(registry.RoleReviewer),
			},
			allowed: true,
		},
		{
			name:   "paused active holder",
			caller: testReviewer,
			principals: []registry.Principal{
				registry.Holder(registry.RoleAdmin),
				registry.ActiveHolder(registry.RoleReviewer),
			},
		},
		{
			name:   "unpaused active holder",
			caller: testAccountant,
			principals: []registry.Principal{
				registry.Holder(registry.RoleAdmin),
				registry.ActiveHolder(registry.RoleAccountant),
			},
			allowed: true,
		},
		{
			name:   "admin unaffected by reviewer pause",
			caller: testAdmin,
			principals: []registry.Principal{
				registry.Holder(registry.RoleAdmin),
				registry.ActiveHolder(registry.RoleReviewer),
			},
			allowed: true,
		},
		{
			name:   "zero caller",
			caller: common.ZeroAddress,
			principals: []registry.Principal{
				registry.Owner(),
				registry.Holder(registry.RoleFundFactory),
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := registry.Authorize(reg, testDef.caller, "test", testDef.principals...)
			if testDef.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, common.ErrUnauthorized)
		})
	}
}

func TestAuthorizeReasons(t *testing.T) {
	l, reg := newAuthzRegistry(t)
	err := registry.Authorize(
		reg,
		testOther,
		"finalizeGrant",
		registry.Holder(registry.RoleAdmin),
		registry.ActiveHolder(registry.RoleAccountant),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalizeGrant")
	assert.Contains(t, err.Error(), "requires ADMIN or ACCOUNTANT (unpaused)")

	require.NoError(t, call(l, testOwner, func(c *ledger.Call) error {
		return reg.Pause(c, registry.RoleAccountant)
	}))
	err = registry.Authorize(
		reg,
		testAccountant,
		"finalizeGrant",
		registry.Holder(registry.RoleAdmin),
		registry.ActiveHolder(registry.RoleAccountant),
	)
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Contains(t, err.Error(), "role ACCOUNTANT is paused")
}

func TestAuthorizeNilReader(t *testing.T) {
	err := registry.Authorize(nil, testOwner, "test", registry.Owner())
	assert.ErrorIs(t, err, common.ErrInvalid)
}

func TestRole(t *testing.T) {
	assert.False(t, registry.RoleEmpty.Valid())
	assert.False(t, registry.Role(7).Valid())
	for i, role := range registry.DeploymentOrder {
		assert.True(t, role.Valid(), "role %d", i)
		parsed, err := registry.ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}
	parsed, err := registry.ParseRole("fund-factory")
	require.NoError(t, err)
	assert.Equal(t, registry.RoleFundFactory, parsed)
	_, err = registry.ParseRole("empty")
	assert.Error(t, err)
	assert.Equal(t, "Role(9)", registry.Role(9).String())
	assert.Equal(t, uint8(6), uint8(registry.RoleAdmin))
}
