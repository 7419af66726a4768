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

// Package core 是 splitkey 的對外核心：金鑰型別、演算法描述表，以及 seed / split / fold_in / random_bits。
//
// 設計重點：
//   - Key 是不可變的值：任何衍生操作都回傳新的 word 陣列，舊 key 永遠可以重複使用。
//   - 演算法集合是封閉的（Threefry / RBG / UnsafeRBG），以 Kind 標記並以 switch 分派。
//   - Key 本身不帶演算法標記；標記由呼叫端保存（或使用 TypedKey 一起攜帶）。
//   - 沒有任何隱藏狀態：相同輸入永遠得到相同輸出，可任意併發呼叫。
package core

import (
	"encoding/binary"
	"encoding/hex"
	"slices"

	"github.com/zintix-labs/splitkey/errs"
)

// Key 是固定長度的 32-bit word 陣列，長度由演算法決定（Threefry 為 2、RBG 為 4）。
//
// 請把 Key 視為不可變值：本包所有函數都不會修改傳入的 Key，回傳的 Key 也一律是新配置的切片。
type Key []uint32

// Equal 回報兩把 key 的 word 是否完全相同。
func (k Key) Equal(o Key) bool {
	return slices.Equal(k, o)
}

// String 以大端序 hex 表示，例如 "000000000000002a"。
func (k Key) String() string {
	b := make([]byte, 4*len(k))
	for i, w := range k {
		binary.BigEndian.PutUint32(b[4*i:], w)
	}
	return hex.EncodeToString(b)
}

// Clone 回傳獨立的複本。
func (k Key) Clone() Key {
	return slices.Clone(k)
}

// TypedKey 把演算法標記與 key 綁在一起，避免呼叫端混用不同演算法的 key。
type TypedKey struct {
	Impl Kind
	Data Key
}

// WrapKeyData 檢查 words 長度是否符合 kind 的 key shape，並以複本建立 TypedKey。
func WrapKeyData(kind Kind, words []uint32) (TypedKey, error) {
	if err := checkKey(kind, words); err != nil {
		return TypedKey{}, err
	}
	return TypedKey{Impl: kind, Data: Key(slices.Clone(words))}, nil
}

// KeyData 回傳 key 的原始 word 複本（供序列化使用）。
func (t TypedKey) KeyData() []uint32 {
	return slices.Clone(t.Data)
}

func (t TypedKey) Equal(o TypedKey) bool {
	return t.Impl == o.Impl && t.Data.Equal(o.Data)
}

func (t TypedKey) String() string {
	return t.Impl.String() + ":" + t.Data.String()
}

// Split 等同 Split(t.Impl, t.Data, n)，回傳帶同一標記的子 key。
func (t TypedKey) Split(n int) ([]TypedKey, error) {
	keys, err := Split(t.Impl, t.Data, n)
	if err != nil {
		return nil, err
	}
	return tag(t.Impl, keys), nil
}

// FoldIn 等同 FoldIn(t.Impl, t.Data, data)。
func (t TypedKey) FoldIn(data uint32) (TypedKey, error) {
	k, err := FoldIn(t.Impl, t.Data, data)
	if err != nil {
		return TypedKey{}, err
	}
	return TypedKey{Impl: t.Impl, Data: k}, nil
}

// RandomBits 等同 RandomBits(t.Impl, t.Data, shape, width)。
func (t TypedKey) RandomBits(shape []int, width int) (Bits, error) {
	return RandomBits(t.Impl, t.Data, shape, width)
}

func tag(kind Kind, keys []Key) []TypedKey {
	out := make([]TypedKey, len(keys))
	for i, k := range keys {
		out[i] = TypedKey{Impl: kind, Data: k}
	}
	return out
}

// SameImpl 檢查所有 key 使用相同的演算法並回傳該標記。
// 空輸入回傳 impl mismatch：沒有 key 就無法決定演算法（批次操作會先處理空批次）。
func SameImpl(keys []TypedKey) (Kind, error) {
	if len(keys) == 0 {
		return 0, errs.Coded(errs.CodeImplMismatch, "no keys given")
	}
	kind := keys[0].Impl
	for i, k := range keys[1:] {
		if k.Impl != kind {
			return 0, errs.Coded(errs.CodeImplMismatch, "key %d uses %s, key 0 uses %s", i+1, k.Impl, kind)
		}
	}
	return kind, nil
}
