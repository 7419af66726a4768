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

package rbg

import (
	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/threefry"
)

// MaxWords 與 Threefry 相同：單次最多 2^32-1 個 word。
const MaxWords = threefry.MaxWords

// counter word 3 的網域標記：一般串流為 0，unsafe split / fold 各自使用獨立的標記，
// 讓衍生 key 用到的 Philox block 不會與任何 random bits 的 block 重疊。
const (
	splitTag uint32 = 0x40000000
	foldTag  uint32 = 0x80000000
)

// Seed 把 Threefry seed 的兩個 word 重複一次：[hi lo hi lo]。
func Seed(seed int64) [4]uint32 {
	h := threefry.Seed(seed)
	return [4]uint32{h[0], h[1], h[0], h[1]}
}

// Words 回傳 key 串流的前 n 個 word：第 i 個 Philox block 使用 counter (c0,c1)+i。
func Words(key [4]uint32, n int) ([]uint32, error) {
	if n < 0 {
		return nil, errs.Coded(errs.CodeInvalidCount, "rbg: negative word count %d", n)
	}
	if uint64(n) > MaxWords {
		return nil, errs.Coded(errs.CodeCounterOverflow, "rbg: %d words exceed counter space (max %d)", n, uint64(MaxWords))
	}
	k := philoxKey(key)
	base := counterBase(key)
	nblocks := (n + 3) / 4
	out := make([]uint32, 4*nblocks)
	for i := 0; i < nblocks; i++ {
		b := Block(k, counterAt(base, uint64(i)))
		copy(out[4*i:], b[:])
	}
	return out[:n], nil
}

// Split 是標準版 split：兩個 half-key 各自做 Threefry split，
// 第 i 把子 key = [threefry(k0,k1)[i], threefry(c0,c1)[i]]。
func Split(key [4]uint32, n int) ([][4]uint32, error) {
	h0, err := threefry.Split([2]uint32{key[0], key[1]}, n)
	if err != nil {
		return nil, err
	}
	h1, err := threefry.Split([2]uint32{key[2], key[3]}, n)
	if err != nil {
		return nil, err
	}
	keys := make([][4]uint32, n)
	for i := range keys {
		keys[i] = [4]uint32{h0[i][0], h0[i][1], h1[i][0], h1[i][1]}
	}
	return keys, nil
}

// FoldIn 是標準版 fold-in：兩個 half-key 各自做 Threefry fold-in。
func FoldIn(key [4]uint32, data uint32) [4]uint32 {
	h0 := threefry.FoldIn([2]uint32{key[0], key[1]}, data)
	h1 := threefry.FoldIn([2]uint32{key[2], key[3]}, data)
	return [4]uint32{h0[0], h0[1], h1[0], h1[1]}
}

// UnsafeSplit 只推進 counter：子 key 沿用父 key 的 Philox key (k0, k1)，
// counter 取自父 key 在 split 網域第 i 個 block 的前兩個 word。
//
// 每把子 key 只需要一次 Philox block。代價是所有後代共用同一把 Philox key，
// 彼此的獨立性只靠 counter 空間的分隔；深度 split 後兄弟 key 約有 3/4 的位元相同。
func UnsafeSplit(key [4]uint32, n int) ([][4]uint32, error) {
	if n < 0 {
		return nil, errs.Coded(errs.CodeInvalidCount, "rbg: split count must be >= 0, got %d", n)
	}
	if uint64(n) > MaxWords/2 {
		return nil, errs.Coded(errs.CodeCounterOverflow, "rbg: split count %d exceeds counter space", n)
	}
	k := philoxKey(key)
	base := counterBase(key)
	keys := make([][4]uint32, n)
	for i := range keys {
		ctr := counterAt(base, uint64(i))
		ctr[3] = splitTag
		b := Block(k, ctr)
		keys[i] = [4]uint32{key[0], key[1], b[0], b[1]}
	}
	return keys, nil
}

// UnsafeFoldIn 與 UnsafeSplit 相同，只改寫 counter：
// 新 counter 取自 Philox block (data, c0, c1, foldTag) 的前兩個 word。
func UnsafeFoldIn(key [4]uint32, data uint32) [4]uint32 {
	b := Block(philoxKey(key), [4]uint32{data, key[2], key[3], foldTag})
	return [4]uint32{key[0], key[1], b[0], b[1]}
}
