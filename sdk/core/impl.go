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
	"strings"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/rbg"
	"github.com/zintix-labs/splitkey/sdk/threefry"
)

// Kind 是封閉的演算法標記。
type Kind uint8

const (
	Threefry Kind = iota + 1
	RBG
	UnsafeRBG
)

// Impl 是演算法描述（PRNGImpl）：key shape 與 seed / split / fold_in / random bits 的實作。
//
// Impl 是靜態表中的唯讀值，不允許在執行期註冊或修改。
type Impl struct {
	Kind      Kind
	Name      string
	KeyShape  int
	Doc       string
	// WeakSplit 為 true 時，split 的子 key 共用部分 key words，兄弟 key 之間可偵測到相關性。
	WeakSplit bool

	seed    func(int64) Key
	seedBig func(*big.Int) Key
	split   func(Key, int) ([]Key, error)
	foldIn  func(Key, uint32) Key
	words   func(Key, int) ([]uint32, error)
}

var threefryImpl = Impl{
	Kind:     Threefry,
	Name:     "threefry_prng_impl",
	KeyShape: 2,
	Doc:      "Threefry-2x32-20 counter-based block cipher",
	seed: func(s int64) Key {
		k := threefry.Seed(s)
		return Key(k[:])
	},
	seedBig: func(s *big.Int) Key {
		k := threefry.SeedBig(s)
		return Key(k[:])
	},
	split: func(k Key, n int) ([]Key, error) {
		keys, err := threefry.Split(key2(k), n)
		if err != nil {
			return nil, err
		}
		out := make([]Key, len(keys))
		for i := range keys {
			out[i] = Key(keys[i][:])
		}
		return out, nil
	},
	foldIn: func(k Key, d uint32) Key {
		r := threefry.FoldIn(key2(k), d)
		return Key(r[:])
	},
	words: func(k Key, n int) ([]uint32, error) {
		return threefry.Words(key2(k), n)
	},
}

var rbgImpl = Impl{
	Kind:     RBG,
	Name:     "rbg_prng_impl",
	KeyShape: 4,
	Doc:      "Philox-4x32-10 bit generator, Threefry-decorrelated split/fold_in",
	seed:     rbgSeed,
	seedBig:  rbgSeedBig,
	split:    rbgSplit(rbg.Split),
	foldIn:   rbgFold(rbg.FoldIn),
	words:    rbgWords,
}

var unsafeRBGImpl = Impl{
	Kind:      UnsafeRBG,
	Name:      "unsafe_rbg_prng_impl",
	KeyShape:  4,
	Doc:       "Philox-4x32-10 bit generator, counter-advance split/fold_in (weaker split independence)",
	WeakSplit: true,
	seed:      rbgSeed,
	seedBig:   rbgSeedBig,
	split:     rbgSplit(rbg.UnsafeSplit),
	foldIn:    rbgFold(rbg.UnsafeFoldIn),
	words:     rbgWords,
}

// impls 為靜態描述表，順序即 Impls() 的輸出順序。
var impls = [...]*Impl{&threefryImpl, &rbgImpl, &unsafeRBGImpl}

// 名稱別名
var aliases = map[string]Kind{
	"threefry_prng_impl":   Threefry,
	"threefry":             Threefry,
	"threefry2x32":         Threefry,
	"rbg_prng_impl":        RBG,
	"rbg":                  RBG,
	"unsafe_rbg_prng_impl": UnsafeRBG,
	"unsafe_rbg":           UnsafeRBG,
}

// lookup 以 switch 分派到對應的描述。
func lookup(kind Kind) (*Impl, error) {
	switch kind {
	case Threefry:
		return &threefryImpl, nil
	case RBG:
		return &rbgImpl, nil
	case UnsafeRBG:
		return &unsafeRBGImpl, nil
	default:
		return nil, errs.Coded(errs.CodeUnknownImpl, "unknown prng impl kind %d", uint8(kind))
	}
}

// ImplOf 回傳 kind 的描述（唯讀複本）。
func ImplOf(kind Kind) (Impl, error) {
	im, err := lookup(kind)
	if err != nil {
		return Impl{}, err
	}
	return *im, nil
}

// Impls 回傳所有內建演算法描述，順序固定。
func Impls() []Impl {
	out := make([]Impl, 0, len(impls))
	for _, im := range impls {
		out = append(out, *im)
	}
	return out
}

// KindByName 解析演算法名稱（大小寫不敏感，支援短別名）。
func KindByName(name string) (Kind, error) {
	if k, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return 0, errs.Coded(errs.CodeUnknownImpl, "unknown prng impl %q", name)
}

// ImplByName 等同 ImplOf(KindByName(name))。
func ImplByName(name string) (Impl, error) {
	k, err := KindByName(name)
	if err != nil {
		return Impl{}, err
	}
	return ImplOf(k)
}

// String 回傳演算法的正式名稱；未知的 kind 回傳空字串。
func (k Kind) String() string {
	if im, err := lookup(k); err == nil {
		return im.Name
	}
	return ""
}

func (k Kind) MarshalText() ([]byte, error) {
	im, err := lookup(k)
	if err != nil {
		return nil, err
	}
	return []byte(im.Name), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := KindByName(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ---------------------------------------
// RBG 轉接
// ---------------------------------------

func key2(k Key) [2]uint32 { return [2]uint32{k[0], k[1]} }

func key4(k Key) [4]uint32 { return [4]uint32{k[0], k[1], k[2], k[3]} }

func rbgSeed(s int64) Key {
	k := rbg.Seed(s)
	return Key(k[:])
}

func rbgSeedBig(s *big.Int) Key {
	h := threefry.SeedBig(s)
	return Key{h[0], h[1], h[0], h[1]}
}

func rbgWords(k Key, n int) ([]uint32, error) {
	return rbg.Words(key4(k), n)
}

func rbgSplit(fn func([4]uint32, int) ([][4]uint32, error)) func(Key, int) ([]Key, error) {
	return func(k Key, n int) ([]Key, error) {
		keys, err := fn(key4(k), n)
		if err != nil {
			return nil, err
		}
		out := make([]Key, len(keys))
		for i := range keys {
			out[i] = Key(keys[i][:])
		}
		return out, nil
	}
}

func rbgFold(fn func([4]uint32, uint32) [4]uint32) func(Key, uint32) Key {
	return func(k Key, d uint32) Key {
		r := fn(key4(k), d)
		return Key(r[:])
	}
}
