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

package core

import (
	"math/big"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/threefry"
)

// Seed 以整數 seed 建立 kind 對應的 key。
func Seed(kind Kind, seed int64) (Key, error) {
	im, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	return im.seed(seed), nil
}

// SeedBig 接受任意寬度整數；超過 64 bits 時以固定雜湊折疊（見 threefry.SeedBig）。
func SeedBig(kind Kind, seed *big.Int) (Key, error) {
	im, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	return im.seedBig(seed), nil
}

// SeedWithImpl 是建立 key 的唯一入口：把演算法標記與剛 seed 好的 key 綁在一起回傳。
func SeedWithImpl(kind Kind, seed int64) (TypedKey, error) {
	k, err := Seed(kind, seed)
	if err != nil {
		return TypedKey{}, err
	}
	return TypedKey{Impl: kind, Data: k}, nil
}

// Split 由 key 衍生 count 把子 key，順序有意義；相同 (key, count) 永遠得到相同結果。
//
// count == 0 回傳空切片；count < 0 回傳 invalid count。
func Split(kind Kind, key Key, count int) ([]Key, error) {
	im, err := checked(kind, key)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errs.Coded(errs.CodeInvalidCount, "split count must be >= 0, got %d", count)
	}
	return im.split(key, count)
}

// FoldIn 由 (key, data) 衍生一把新 key，與 Split 的輸出不相關。
func FoldIn(kind Kind, key Key, data uint32) (Key, error) {
	im, err := checked(kind, key)
	if err != nil {
		return nil, err
	}
	return im.foldIn(key, data), nil
}

// RandomBits 產生 shape 形狀、每個元素 width bits 的原始亂數位元。
//
// width 只接受 8 / 16 / 32 / 64。所需 word 數 = ceil(width*size/32)，
// 超過 counter 空間（2^32-1 個 word）時回傳 Fatal，不會產生重複的位元。
func RandomBits(kind Kind, key Key, shape []int, width int) (Bits, error) {
	im, err := checked(kind, key)
	if err != nil {
		return Bits{}, err
	}
	if !validWidth(width) {
		return Bits{}, errs.Coded(errs.CodeInvalidWidth, "bit width must be 8, 16, 32 or 64, got %d", width)
	}
	size, err := shapeSize(shape)
	if err != nil {
		return Bits{}, err
	}
	n, err := wordCount(size, width)
	if err != nil {
		return Bits{}, err
	}
	words, err := im.words(key, n)
	if err != nil {
		return Bits{}, err
	}
	return compose(words, shape, size, width), nil
}

// Threefry2x32 是 threefry2x32_p 原語：單次 Threefry-2x32-20 區塊運算。
func Threefry2x32(key, ctr [2]uint32) [2]uint32 {
	return threefry.Block(key, ctr)
}

// ---------------------------------------
// 批次操作（所有 key 必須同一演算法；空批次回傳空結果，與 split(key, 0) 一致）
// ---------------------------------------

// SplitEach 對每把 key 各自 split 出 n 把子 key。
func SplitEach(keys []TypedKey, n int) ([][]TypedKey, error) {
	if len(keys) == 0 {
		return [][]TypedKey{}, nil
	}
	kind, err := SameImpl(keys)
	if err != nil {
		return nil, err
	}
	out := make([][]TypedKey, len(keys))
	for i, k := range keys {
		sub, err := Split(kind, k.Data, n)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "split each failed", k.String())
		}
		out[i] = tag(kind, sub)
	}
	return out, nil
}

// FoldInEach 對每把 key 各自 fold 進同一個 data。
func FoldInEach(keys []TypedKey, data uint32) ([]TypedKey, error) {
	if len(keys) == 0 {
		return []TypedKey{}, nil
	}
	kind, err := SameImpl(keys)
	if err != nil {
		return nil, err
	}
	out := make([]TypedKey, len(keys))
	for i, k := range keys {
		f, err := FoldIn(kind, k.Data, data)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "fold_in each failed", k.String())
		}
		out[i] = TypedKey{Impl: kind, Data: f}
	}
	return out, nil
}

// RandomBitsEach 對每把 key 各自產生同樣 shape / width 的位元。
// 任何一把失敗即整體失敗，不回傳部分結果。
func RandomBitsEach(keys []TypedKey, shape []int, width int) ([]Bits, error) {
	if len(keys) == 0 {
		return []Bits{}, nil
	}
	kind, err := SameImpl(keys)
	if err != nil {
		return nil, err
	}
	out := make([]Bits, len(keys))
	for i, k := range keys {
		b, err := RandomBits(kind, k.Data, shape, width)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "random bits each failed", k.String())
		}
		out[i] = b
	}
	return out, nil
}

// ---------------------------------------
// 內部方法
// ---------------------------------------

func checked(kind Kind, key Key) (*Impl, error) {
	im, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	if len(key) != im.KeyShape {
		return nil, errs.Coded(errs.CodeInvalidKeyShape, "%s expects %d key words, got %d", im.Name, im.KeyShape, len(key))
	}
	return im, nil
}

func checkKey(kind Kind, words []uint32) error {
	_, err := checked(kind, Key(words))
	return err
}
