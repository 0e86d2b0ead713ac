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

package common

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const AddressLength = 20

// Address identifies an account or a deployed contract
type Address [AddressLength]byte

// ZeroAddress is the null sentinel used for unset roles and missing arguments
var ZeroAddress Address

// NewAddress parses a hex-encoded address with an optional 0x prefix
func NewAddress(s string) (Address, error) {
	var ret Address
	tmp := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(tmp) != AddressLength*2 {
		return ret, fmt.Errorf(
			"invalid address length: expected %d hex characters, got %d",
			AddressLength*2,
			len(tmp),
		)
	}
	if _, err := hex.Decode(ret[:], []byte(tmp)); err != nil {
		return ret, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return ret, nil
}

// MustAddress is like NewAddress but panics on invalid input. It is intended
// for constants and tests
func MustAddress(s string) Address {
	addr, err := NewAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// DeriveAddress computes the address of the contract created by deployer with
// the given deployment nonce
func DeriveAddress(deployer Address, nonce uint64) Address {
	var buf [AddressLength + 8]byte
	copy(buf[:], deployer[:])
	binary.BigEndian.PutUint64(buf[AddressLength:], nonce)
	sum := blake2b.Sum256(buf[:])
	var ret Address
	copy(ret[:], sum[len(sum)-AddressLength:])
	return ret
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = ZeroAddress
		return nil
	}
	tmp, err := NewAddress(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// Decode implements envconfig.Decoder
func (a *Address) Decode(value string) error {
	return a.UnmarshalText([]byte(value))
}
