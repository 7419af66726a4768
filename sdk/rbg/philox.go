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

// Package rbg 實作較便宜的 RBG（random bit generator）區塊產生器。
//
// RBG key 為 4 個 32-bit word：[k0 k1 c0 c1]。
//   - (k0, k1) 為 Philox-4x32-10 的 key。
//   - (c0, c1) 為 64-bit counter 起點（c0 為低位）。
//
// 亂數位元由 Philox 對遞增 counter 產生（counter-based），不需要 Threefry 的 20 輪結構。
// 標準版（Split / FoldIn）會把兩個 half-key 各自交給 Threefry 做一次去相關；
// unsafe 版（UnsafeSplit / UnsafeFoldIn）只推進 counter，保留父 key 的 Philox key。
package rbg

import "math/bits"

const (
	philoxM0 uint32 = 0xD2511F53
	philoxM1 uint32 = 0xCD9E8D57
	philoxW0 uint32 = 0x9E3779B9
	philoxW1 uint32 = 0xBB67AE85

	rounds = 10
)

// Block 執行一次 Philox-4x32-10。
func Block(key [2]uint32, ctr [4]uint32) [4]uint32 {
	k0, k1 := key[0], key[1]
	c := ctr
	for r := 0; r < rounds; r++ {
		if r > 0 {
			k0 += philoxW0
			k1 += philoxW1
		}
		hi0, lo0 := bits.Mul32(philoxM0, c[0])
		hi1, lo1 := bits.Mul32(philoxM1, c[2])
		c = [4]uint32{hi1 ^ c[1] ^ k0, lo1, hi0 ^ c[3] ^ k1, lo0}
	}
	return c
}

// counterAt 回傳 128-bit counter：(base + i)，低 64 位放在 word 0/1，進位放在 word 2。
func counterAt(base, i uint64) [4]uint32 {
	lo, carry := bits.Add64(base, i, 0)
	return [4]uint32{uint32(lo), uint32(lo >> 32), uint32(carry), 0}
}

func philoxKey(key [4]uint32) [2]uint32 { return [2]uint32{key[0], key[1]} }

func counterBase(key [4]uint32) uint64 { return uint64(key[3])<<32 | uint64(key[2]) }
