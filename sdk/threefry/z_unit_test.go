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
	"errors"
	"math/big"
	"slices"
	"testing"

	"github.com/zintix-labs/splitkey/errs"
)

func TestBlockKnownAnswers(t *testing.T) {
	cases := []struct {
		key, ctr, want [2]uint32
	}{
		{[2]uint32{0, 0}, [2]uint32{0, 0}, [2]uint32{0x6b200159, 0x99ba4efe}},
		{[2]uint32{0xffffffff, 0xffffffff}, [2]uint32{0xffffffff, 0xffffffff}, [2]uint32{0x1cb996fc, 0xbb002be7}},
		{[2]uint32{0x13198a2e, 0x03707344}, [2]uint32{0x243f6a88, 0x85a308d3}, [2]uint32{0xc4923a9c, 0x483df7a0}},
	}
	for _, c := range cases {
		if got := Block(c.key, c.ctr); got != c.want {
			t.Fatalf("Block(%08x, %08x) = %08x, want %08x", c.key, c.ctr, got, c.want)
		}
	}
}

func TestMixWraps(t *testing.T) {
	x0, x1 := Mix(0xffffffff, 1, 13)
	if x0 != 0 {
		t.Fatalf("expected wraparound add, got %08x", x0)
	}
	if x1 != (1<<13)^x0 {
		t.Fatalf("unexpected x1 %08x", x1)
	}
}

func TestHashMatchesWords(t *testing.T) {
	key := [2]uint32{1, 2}
	for _, n := range []int{0, 1, 2, 5, 8, 33} {
		counts := make([]uint32, n)
		for i := range counts {
			counts[i] = uint32(i)
		}
		w, err := Words(key, n)
		if err != nil {
			t.Fatalf("Words(%d): %v", n, err)
		}
		if h := Hash(key, counts); !slices.Equal(h, w) {
			t.Fatalf("n=%d: Hash %v != Words %v", n, h, w)
		}
	}
}

func TestHashOddLengthPadsWithZero(t *testing.T) {
	key := [2]uint32{1, 2}
	got := Hash(key, []uint32{0, 1, 2, 3, 4})
	want := []uint32{2052595727, 3504730591, 2527474599, 1880214352, 1914734168}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	// 第三對 counter 為 (2, 0)
	if b := Block(key, [2]uint32{2, 0}); b[0] != got[2] {
		t.Fatalf("padded lane mismatch: %08x vs %08x", b[0], got[2])
	}
}

func TestSplitReference(t *testing.T) {
	keys, err := Split(Seed(0), 2)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]uint32{{4146024105, 967050713}, {2718843009, 1272950319}}
	if !slices.Equal(keys, want) {
		t.Fatalf("split(seed 0) = %v, want %v", keys, want)
	}
}

func TestSplitCounts(t *testing.T) {
	keys, err := Split(Seed(7), 0)
	if err != nil || len(keys) != 0 {
		t.Fatalf("expected empty split, got %v %v", keys, err)
	}
	if _, err := Split(Seed(7), -1); !errors.Is(err, errs.ErrInvalidCount) {
		t.Fatalf("expected invalid count, got %v", err)
	}
	if _, err := Words(Seed(7), MaxWords+1); !errors.Is(err, errs.ErrCounterOverflow) {
		t.Fatalf("expected counter overflow, got %v", err)
	}
}

func TestFoldIn(t *testing.T) {
	k := Seed(0)
	if got, want := FoldIn(k, 1), [2]uint32{928981903, 3453687069}; got != want {
		t.Fatalf("FoldIn = %v, want %v", got, want)
	}
	if FoldIn(k, 1) == FoldIn(k, 2) {
		t.Fatalf("fold_in with different data must differ")
	}
}

func TestSeed(t *testing.T) {
	if got := Seed(42); got != [2]uint32{0, 42} {
		t.Fatalf("Seed(42) = %v", got)
	}
	if got := Seed(-1); got != [2]uint32{0xffffffff, 0xffffffff} {
		t.Fatalf("Seed(-1) = %v", got)
	}
	if got := Seed(1 << 40); got != [2]uint32{1 << 8, 0} {
		t.Fatalf("Seed(1<<40) = %v", got)
	}
}

func TestSeedBig(t *testing.T) {
	if got := SeedBig(big.NewInt(42)); got != Seed(42) {
		t.Fatalf("small big seed must match Seed: %v", got)
	}
	u := new(big.Int).SetUint64(1<<63 + 5)
	if got := SeedBig(u); got != Seed(int64(u.Uint64())) {
		t.Fatalf("uint64 big seed must use halves: %v", got)
	}
	wide := new(big.Int).Lsh(big.NewInt(1), 100)
	a := SeedBig(wide)
	b := SeedBig(new(big.Int).Neg(wide))
	if a == b {
		t.Fatalf("sign must be part of the wide seed hash")
	}
	if a != SeedBig(new(big.Int).Lsh(big.NewInt(1), 100)) {
		t.Fatalf("wide seed hash must be deterministic")
	}
}

func BenchmarkBlock(b *testing.B) {
	key := [2]uint32{0x13198a2e, 0x03707344}
	ctr := [2]uint32{}
	for i := 0; i < b.N; i++ {
		ctr = Block(key, ctr)
	}
	_ = ctr
}

func BenchmarkWords4096(b *testing.B) {
	key := Seed(42)
	b.SetBytes(4096 * 4)
	for i := 0; i < b.N; i++ {
		if _, err := Words(key, 4096); err != nil {
			b.Fatal(err)
		}
	}
}
