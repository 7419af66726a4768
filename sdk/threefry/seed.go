// Copyright 2025 Zintix Labs
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

package threefry

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// Seed 把 64-bit 整數 seed 拆成 (高 32 位, 低 32 位) 兩個 word。
// 負數以二補數解讀。
func Seed(seed int64) [2]uint32 {
	u := uint64(seed)
	return [2]uint32{uint32(u >> 32), uint32(u)}
}

// SeedBig 接受任意寬度的整數 seed。
//
//   - 可以放進 int64 或 uint64 時，與 Seed 相同（取高低兩半）。
//   - 超過 64 bits 時，以 BLAKE2b-256 對「符號位元組 + 大端序絕對值」做雜湊，
//     取前 8 個 bytes（大端序）作為 (hi, lo)。此雜湊規則屬於相容性合約，不可更動。
func SeedBig(seed *big.Int) [2]uint32 {
	if seed == nil {
		return Seed(0)
	}
	if seed.IsInt64() {
		return Seed(seed.Int64())
	}
	if seed.IsUint64() {
		return Seed(int64(seed.Uint64()))
	}
	var sign byte
	if seed.Sign() < 0 {
		sign = 1
	}
	buf := append([]byte{sign}, seed.Bytes()...)
	sum := blake2b.Sum256(buf)
	return [2]uint32{binary.BigEndian.Uint32(sum[0:4]), binary.BigEndian.Uint32(sum[4:8])}
}
