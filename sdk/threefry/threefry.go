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
	"math"

	"github.com/zintix-labs/splitkey/errs"
)

// MaxWords 為單次請求可產出的 32-bit word 上限。
// counter 以 uint32 表示，超過即代表 counter 會重複（aliasing），一律視為致命錯誤。
const MaxWords = math.MaxUint32

// Block 對一組 (key, counter) 執行完整的 Threefry-2x32-20 置換。
//
// 這就是對外的 threefry2x32_p 原語：兩個 32-bit word 進、兩個 32-bit word 出。
// key schedule：ks = {k0, k1, k0^k1^parity}，每 4 輪注入一次，第 i 次注入
// x0 += ks[i%3]、x1 += ks[(i+1)%3] + i。
func Block(key, ctr [2]uint32) [2]uint32 {
	ks := [3]uint32{key[0], key[1], key[0] ^ key[1] ^ parity}
	x0 := ctr[0] + ks[0]
	x1 := ctr[1] + ks[1]
	for i := 1; i <= 5; i++ {
		x0, x1 = mix4(x0, x1, &Rotations[(i-1)&1])
		x0 += ks[i%3]
		x1 += ks[(i+1)%3] + uint32(i)
	}
	return [2]uint32{x0, x1}
}

// Hash 是向量版本的 threefry_2x32：
// counts 先切成前後兩半（奇數長度時尾端補 0），前半為 counter lane 0、後半為 lane 1，
// 每對 counter 跑一次 Block，兩個輸出 lane 依序串接後截斷回 len(counts)。
func Hash(key [2]uint32, counts []uint32) []uint32 {
	n := len(counts)
	half := (n + 1) / 2
	out := make([]uint32, 2*half)
	for j := 0; j < half; j++ {
		var c1 uint32
		if half+j < n {
			c1 = counts[half+j]
		}
		y := Block(key, [2]uint32{counts[j], c1})
		out[j] = y[0]
		out[half+j] = y[1]
	}
	return out[:n]
}

// Words 回傳 Hash(key, [0, 1, ..., n-1])，即 key 所定義之串流的前 n 個 word。
//
// n 必須介於 [0, MaxWords]；超過代表 counter 空間不足，回傳 Fatal。
func Words(key [2]uint32, n int) ([]uint32, error) {
	if n < 0 {
		return nil, errs.Coded(errs.CodeInvalidCount, "threefry: negative word count %d", n)
	}
	if uint64(n) > MaxWords {
		return nil, errs.Coded(errs.CodeCounterOverflow, "threefry: %d words exceed counter space (max %d)", n, uint64(MaxWords))
	}
	half := (n + 1) / 2
	out := make([]uint32, 2*half)
	for j := 0; j < half; j++ {
		var c1 uint32
		if half+j < n {
			c1 = uint32(half + j)
		}
		y := Block(key, [2]uint32{uint32(j), c1})
		out[j] = y[0]
		out[half+j] = y[1]
	}
	return out[:n], nil
}

// Split 以 key 對 counter 區間 [0, 2n) 產生 word，再兩兩配對成 n 把新 key。
//
// n == 0 回傳空切片；n < 0 為參數錯誤。
func Split(key [2]uint32, n int) ([][2]uint32, error) {
	if n < 0 {
		return nil, errs.Coded(errs.CodeInvalidCount, "threefry: split count must be >= 0, got %d", n)
	}
	if uint64(n) > MaxWords/2 {
		return nil, errs.Coded(errs.CodeCounterOverflow, "threefry: split count %d exceeds counter space", n)
	}
	w, err := Words(key, 2*n)
	if err != nil {
		return nil, err
	}
	keys := make([][2]uint32, n)
	for j := range keys {
		keys[j] = [2]uint32{w[2*j], w[2*j+1]}
	}
	return keys, nil
}

// FoldIn 把 data 當作 counter 混入 key：Hash(key, Seed(data))。
// 32-bit data 的 seed 為 (0, data)，因此等同 Block(key, (0, data))。
func FoldIn(key [2]uint32, data uint32) [2]uint32 {
	return Block(key, [2]uint32{0, data})
}
