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
	"errors"
	"math/big"
	"slices"
	"testing"

	"github.com/zintix-labs/splitkey/errs"
)

var allKinds = []Kind{Threefry, RBG, UnsafeRBG}

func mustSeed(t *testing.T, kind Kind, seed int64) Key {
	t.Helper()
	k, err := Seed(kind, seed)
	if err != nil {
		t.Fatalf("seed %s: %v", kind, err)
	}
	return k
}

func TestScenarioSeedSplitBits(t *testing.T) {
	k := mustSeed(t, Threefry, 42)
	if !k.Equal(Key{0, 42}) {
		t.Fatalf("seed(42) = %v", k)
	}
	keys, err := Split(Threefry, k, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !keys[0].Equal(Key{2465931498, 3679230171}) || !keys[1].Equal(Key{255383827, 267815257}) {
		t.Fatalf("unexpected split: %v", keys)
	}
	b1, err := RandomBits(Threefry, keys[0], []int{4}, 32)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{3164236999, 3984487275, 3923418436, 1366451097}
	if !slices.Equal(b1.Uint32s(), want) {
		t.Fatalf("bits(K1) = %v, want %v", b1.Uint32s(), want)
	}
	again, _ := RandomBits(Threefry, keys[0], []int{4}, 32)
	if !slices.Equal(again.Data, b1.Data) {
		t.Fatalf("random bits not deterministic")
	}
	b2, _ := RandomBits(Threefry, keys[1], []int{4}, 32)
	if slices.Equal(b1.Data, b2.Data) {
		t.Fatalf("bits from K1 and K2 must differ")
	}
}

func TestThreefry2x32Reference(t *testing.T) {
	if got := Threefry2x32([2]uint32{0, 0}, [2]uint32{0, 0}); got != [2]uint32{0x6b200159, 0x99ba4efe} {
		t.Fatalf("threefry2x32_p((0,0),(0,0)) = %08x", got)
	}
}

func TestDeterminismAllImpls(t *testing.T) {
	for _, kind := range allKinds {
		k := mustSeed(t, kind, 2025)
		a, err := RandomBits(kind, k, []int{3, 5}, 16)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		b, _ := RandomBits(kind, k.Clone(), []int{3, 5}, 16)
		if !slices.Equal(a.Data, b.Data) || !slices.Equal(a.Shape, []int{3, 5}) {
			t.Fatalf("%s: random bits not deterministic", kind)
		}
		for _, v := range a.Data {
			if v >= 1<<16 {
				t.Fatalf("%s: value %d exceeds width", kind, v)
			}
		}
		s1, _ := Split(kind, k, 5)
		s2, _ := Split(kind, k, 5)
		for i := range s1 {
			if !s1[i].Equal(s2[i]) {
				t.Fatalf("%s: split not deterministic", kind)
			}
		}
	}
}

func TestSplitUniqueness(t *testing.T) {
	for _, kind := range allKinds {
		k := mustSeed(t, kind, 1)
		keys, err := Split(kind, k, 2000)
		if err != nil {
			t.Fatal(err)
		}
		seen := make(map[string]bool, len(keys))
		for _, sk := range keys {
			if len(sk) != len(k) {
				t.Fatalf("%s: child key shape %d", kind, len(sk))
			}
			if seen[sk.String()] || sk.Equal(k) {
				t.Fatalf("%s: duplicate key %s", kind, sk)
			}
			seen[sk.String()] = true
		}
		empty, err := Split(kind, k, 0)
		if err != nil || len(empty) != 0 {
			t.Fatalf("%s: split(0) = %v, %v", kind, empty, err)
		}
	}
}

func TestFoldInDivergence(t *testing.T) {
	for _, kind := range allKinds {
		k := mustSeed(t, kind, 99)
		children, _ := Split(kind, k, 16)
		folds := map[string]bool{}
		for d := uint32(0); d < 64; d++ {
			f, err := FoldIn(kind, k, d)
			if err != nil {
				t.Fatal(err)
			}
			if folds[f.String()] {
				t.Fatalf("%s: fold_in collision at data=%d", kind, d)
			}
			folds[f.String()] = true
			for _, c := range children {
				if c.Equal(f) {
					t.Fatalf("%s: fold_in(%d) equals a split child", kind, d)
				}
			}
		}
	}
}

func TestWidthComposition(t *testing.T) {
	for _, kind := range allKinds {
		k := mustSeed(t, kind, 7)
		const n = 9
		wide, err := RandomBits(kind, k, []int{n}, 64)
		if err != nil {
			t.Fatal(err)
		}
		narrow, _ := RandomBits(kind, k, []int{2 * n}, 32)
		for i := 0; i < n; i++ {
			want := narrow.Data[i]<<32 | narrow.Data[n+i]
			if wide.Data[i] != want {
				t.Fatalf("%s: 64-bit element %d = %x, want %x", kind, i, wide.Data[i], want)
			}
		}
		bytes, _ := RandomBits(kind, k, []int{8}, 8)
		words, _ := RandomBits(kind, k, []int{2}, 32)
		for e := 0; e < 8; e++ {
			w := words.Data[e/4]
			if want := (w >> (8 * (e % 4))) & 0xff; bytes.Data[e] != want {
				t.Fatalf("%s: byte %d = %x, want %x", kind, e, bytes.Data[e], want)
			}
		}
	}
}

func TestBitsAccessors(t *testing.T) {
	k := mustSeed(t, Threefry, 5)
	b, err := RandomBits(Threefry, k, []int{2, 3}, 32)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 6 || b.At(1, 2) != b.Data[5] || b.At(0, 1) != b.Data[1] {
		t.Fatalf("unexpected row-major layout")
	}
	scalar, _ := RandomBits(Threefry, k, nil, 32)
	if scalar.Len() != 1 || len(scalar.Shape) != 0 {
		t.Fatalf("scalar shape should yield one element, got %d", scalar.Len())
	}
	empty, _ := RandomBits(Threefry, k, []int{0, 4}, 64)
	if empty.Len() != 0 {
		t.Fatalf("zero-sized shape should be empty")
	}
}

func TestErrors(t *testing.T) {
	tf := mustSeed(t, Threefry, 1)
	r := mustSeed(t, RBG, 1)

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"key shape", second(Split(RBG, tf, 2)), errs.ErrInvalidKeyShape},
		{"key shape fold", second(FoldIn(Threefry, r, 1)), errs.ErrInvalidKeyShape},
		{"unknown impl", second(Seed(Kind(42), 1)), errs.ErrUnknownImpl},
		{"negative count", second(Split(Threefry, tf, -1)), errs.ErrInvalidCount},
		{"negative dim", second(RandomBits(Threefry, tf, []int{2, -1}, 32)), errs.ErrInvalidShape},
		{"bad width", second(RandomBits(UnsafeRBG, r, []int{2}, 12)), errs.ErrInvalidWidth},
		{"too many words", second(RandomBits(Threefry, tf, []int{1 << 20, 1 << 20}, 32)), errs.ErrCounterOverflow},
		{"shape overflow", second(RandomBits(RBG, r, []int{1 << 40, 1 << 40}, 8)), errs.ErrCounterOverflow},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, c.err)
		}
	}
	e, _ := errs.AsErr(second(RandomBits(Threefry, tf, []int{1 << 20, 1 << 20}, 32)))
	if e.ErrLv != errs.Fatal {
		t.Fatalf("counter overflow must be fatal")
	}
	if !errs.IsInvalidArgument(second(Split(Threefry, tf, -1))) {
		t.Fatalf("negative count must be invalid argument")
	}
}

func second[T any](_ T, err error) error { return err }

func TestTypedKeys(t *testing.T) {
	root, err := SeedWithImpl(RBG, 8)
	if err != nil {
		t.Fatal(err)
	}
	kids, err := root.Split(3)
	if err != nil {
		t.Fatal(err)
	}
	plain, _ := Split(RBG, root.Data, 3)
	for i := range kids {
		if kids[i].Impl != RBG || !kids[i].Data.Equal(plain[i]) {
			t.Fatalf("typed split mismatch at %d", i)
		}
	}
	if _, err := SplitEach(kids, 2); err != nil {
		t.Fatalf("split each: %v", err)
	}
	tf, _ := SeedWithImpl(Threefry, 8)
	mixed := append(slices.Clone(kids), tf)
	if _, err := SplitEach(mixed, 2); !errors.Is(err, errs.ErrImplMismatch) {
		t.Fatalf("expected impl mismatch, got %v", err)
	}
	if _, err := RandomBitsEach(mixed, []int{2}, 32); !errors.Is(err, errs.ErrImplMismatch) {
		t.Fatalf("expected impl mismatch, got %v", err)
	}
	if _, err := SameImpl(nil); !errors.Is(err, errs.ErrImplMismatch) {
		t.Fatalf("expected impl mismatch for no keys, got %v", err)
	}
	bits, err := RandomBitsEach(kids, []int{4}, 32)
	if err != nil || len(bits) != 3 {
		t.Fatalf("random bits each: %v", err)
	}
}

func TestWrapKeyData(t *testing.T) {
	words := []uint32{1, 2}
	k, err := WrapKeyData(Threefry, words)
	if err != nil {
		t.Fatal(err)
	}
	words[0] = 9
	if k.Data[0] != 1 {
		t.Fatalf("WrapKeyData must copy its input")
	}
	if _, err := WrapKeyData(UnsafeRBG, words); !errors.Is(err, errs.ErrInvalidKeyShape) {
		t.Fatalf("expected key shape error, got %v", err)
	}
	d := k.KeyData()
	d[1] = 7
	if k.Data[1] != 2 {
		t.Fatalf("KeyData must return a copy")
	}
}

func TestRegistry(t *testing.T) {
	names := []string{}
	for _, im := range Impls() {
		names = append(names, im.Name)
	}
	if !slices.Equal(names, []string{"threefry_prng_impl", "rbg_prng_impl", "unsafe_rbg_prng_impl"}) {
		t.Fatalf("unexpected registry %v", names)
	}
	for alias, want := range map[string]Kind{"threefry2x32": Threefry, "RBG": RBG, " unsafe_rbg ": UnsafeRBG} {
		if k, err := KindByName(alias); err != nil || k != want {
			t.Fatalf("KindByName(%q) = %v, %v", alias, k, err)
		}
	}
	if _, err := ImplByName("mt19937"); !errors.Is(err, errs.ErrUnknownImpl) {
		t.Fatalf("expected unknown impl, got %v", err)
	}
	im, _ := ImplOf(UnsafeRBG)
	if im.KeyShape != 4 || !im.WeakSplit {
		t.Fatalf("unsafe rbg descriptor %+v", im)
	}
	for _, kind := range []Kind{Threefry, RBG} {
		if std, _ := ImplOf(kind); std.WeakSplit {
			t.Fatalf("%s must not be marked weak split", kind)
		}
	}
	var k Kind
	if err := k.UnmarshalText([]byte("rbg_prng_impl")); err != nil || k != RBG {
		t.Fatalf("UnmarshalText: %v %v", k, err)
	}
	if b, _ := Threefry.MarshalText(); string(b) != "threefry_prng_impl" {
		t.Fatalf("MarshalText = %s", b)
	}
}

func TestSeedBigDispatch(t *testing.T) {
	for _, kind := range allKinds {
		a, _ := SeedBig(kind, big.NewInt(12345))
		b := mustSeed(t, kind, 12345)
		if !a.Equal(b) {
			t.Fatalf("%s: SeedBig small value must equal Seed", kind)
		}
	}
	wide := new(big.Int).Lsh(big.NewInt(3), 90)
	k, err := SeedBig(RBG, wide)
	if err != nil || len(k) != 4 || k[0] != k[2] || k[1] != k[3] {
		t.Fatalf("rbg wide seed layout: %v %v", k, err)
	}
}

func TestEmptyBatches(t *testing.T) {
	split, err := SplitEach(nil, 3)
	if err != nil || split == nil || len(split) != 0 {
		t.Fatalf("SplitEach(nil) = %v, %v", split, err)
	}
	folded, err := FoldInEach([]TypedKey{}, 1)
	if err != nil || folded == nil || len(folded) != 0 {
		t.Fatalf("FoldInEach(empty) = %v, %v", folded, err)
	}
	bits, err := RandomBitsEach(nil, []int{4}, 32)
	if err != nil || bits == nil || len(bits) != 0 {
		t.Fatalf("RandomBitsEach(nil) = %v, %v", bits, err)
	}
}
