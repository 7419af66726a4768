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

// Package threefry 實作 Threefry-2x32 計數器型（counter-based）區塊產生器。
//
// 所有函數皆為純函數：輸出只由 key 與 counter 決定，不持有任何內部狀態。
// 20 rounds 的參數與 Random123 的 threefry2x32 相同，輸出可逐位元對照。
package threefry

import "math/bits"

// Rotations 是 ARX 每一輪使用的旋轉位數，偶數組與奇數組交替使用。
var Rotations = [2][4]int{
	{13, 15, 26, 6},
	{17, 29, 16, 24},
}

// parity 為 Threefry key schedule 的常數，第三把子金鑰 = k0 ^ k1 ^ parity。
const parity uint32 = 0x1BD11BDA

// Mix 是單一 ARX 步驟：x0 += x1; x1 = rotl(x1, r); x1 ^= x0。
// 加法為 mod 2^32 環繞運算。
func Mix(x0, x1 uint32, r int) (uint32, uint32) {
	x0 += x1
	x1 = bits.RotateLeft32(x1, r)
	x1 ^= x0
	return x0, x1
}

// mix4 依序套用一組 4 個旋轉位數。
func mix4(x0, x1 uint32, rot *[4]int) (uint32, uint32) {
	x0, x1 = Mix(x0, x1, rot[0])
	x0, x1 = Mix(x0, x1, rot[1])
	x0, x1 = Mix(x0, x1, rot[2])
	x0, x1 = Mix(x0, x1, rot[3])
	return x0, x1
}
