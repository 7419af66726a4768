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

// Package stats 提供亂數位元的統計檢定：均勻度（chi-squared）、頻率（monobit）、相關性，
// 以及深度 split 後兄弟 key 的位元一致率。
//
// 所有累積器（Histogram / BitCounter）都可以分段累積後 Merge，供平行 worker 使用。
package stats

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/splitkey/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquared 為均勻度檢定結果
type ChiSquared struct {
	Buckets int     `json:"Buckets"`
	Samples int     `json:"Samples"`
	Stat    float64 `json:"Stat"`
	DF      float64 `json:"DF"`
	PValue  float64 `json:"PValue"`
}

// Pass 回報 p-value 是否不小於 alpha。
func (c ChiSquared) Pass(alpha float64) bool { return c.PValue >= alpha }

// Histogram 依樣本最高的 log2(buckets) 個位元分桶。
type Histogram struct {
	width  int
	shift  uint
	counts []int
	total  int
}

// NewHistogram 建立分桶器：buckets 必須是 2 的次方，且不超過 2^width。
func NewHistogram(width, buckets int) (*Histogram, error) {
	if width < 1 || width > 64 {
		return nil, errs.Coded(errs.CodeInvalidWidth, "histogram width %d out of range", width)
	}
	if buckets < 2 || buckets&(buckets-1) != 0 {
		return nil, errs.Coded(errs.CodeInvalidSetting, "buckets must be a power of two >= 2, got %d", buckets)
	}
	b := bits.TrailingZeros(uint(buckets))
	if b > width {
		return nil, errs.Coded(errs.CodeInvalidSetting, "%d buckets exceed the %d-bit sample space", buckets, width)
	}
	return &Histogram{width: width, shift: uint(width - b), counts: make([]int, buckets)}, nil
}

// Add 累積樣本；只看低 width 位元。
func (h *Histogram) Add(samples []uint64) {
	mask := uint64(math.MaxUint64)
	if h.width < 64 {
		mask = 1<<h.width - 1
	}
	for _, v := range samples {
		h.counts[(v&mask)>>h.shift]++
	}
	h.total += len(samples)
}

// Merge 合併另一個同設定的 Histogram。
func (h *Histogram) Merge(o *Histogram) error {
	if o == nil {
		return nil
	}
	if o.width != h.width || len(o.counts) != len(h.counts) {
		return errs.Coded(errs.CodeInvalidSetting, "histogram layout mismatch")
	}
	for i, c := range o.counts {
		h.counts[i] += c
	}
	h.total += o.total
	return nil
}

func (h *Histogram) Counts() []int { return append([]int(nil), h.counts...) }

func (h *Histogram) Total() int { return h.total }

// ChiSquared 計算 chi-squared goodness-of-fit，p-value 取自 gonum 的卡方分布。
func (h *Histogram) ChiSquared() ChiSquared {
	k := len(h.counts)
	out := ChiSquared{Buckets: k, Samples: h.total, DF: float64(k - 1)}
	if h.total == 0 {
		out.PValue = 1
		return out
	}
	exp := float64(h.total) / float64(k)
	for _, c := range h.counts {
		d := float64(c) - exp
		out.Stat += d * d / exp
	}
	out.PValue = distuv.ChiSquared{K: out.DF}.Survival(out.Stat)
	return out
}

// ChiSquaredUniform 是單次呼叫版本。
func ChiSquaredUniform(samples []uint64, width, buckets int) (ChiSquared, error) {
	h, err := NewHistogram(width, buckets)
	if err != nil {
		return ChiSquared{}, err
	}
	h.Add(samples)
	return h.ChiSquared(), nil
}

// Monobit 為頻率檢定結果：1 的比例應接近 1/2。
type Monobit struct {
	Bits   int     `json:"Bits"`
	Ones   int     `json:"Ones"`
	Z      float64 `json:"Z"`
	PValue float64 `json:"PValue"`
}

func (m Monobit) Pass(alpha float64) bool { return m.PValue >= alpha }

// BitCounter 累積 1 的個數。
type BitCounter struct {
	width int
	ones  int
	bits  int
}

func NewBitCounter(width int) *BitCounter { return &BitCounter{width: width} }

func (b *BitCounter) Add(samples []uint64) {
	mask := uint64(math.MaxUint64)
	if b.width < 64 {
		mask = 1<<b.width - 1
	}
	for _, v := range samples {
		b.ones += bits.OnesCount64(v & mask)
	}
	b.bits += b.width * len(samples)
}

func (b *BitCounter) Merge(o *BitCounter) {
	if o == nil {
		return
	}
	b.ones += o.ones
	b.bits += o.bits
}

// Monobit：z = (2*ones - n) / sqrt(n)，雙尾 p-value 取自標準常態。
func (b *BitCounter) Monobit() Monobit {
	out := Monobit{Bits: b.bits, Ones: b.ones, PValue: 1}
	if b.bits == 0 {
		return out
	}
	out.Z = float64(2*b.ones-b.bits) / math.Sqrt(float64(b.bits))
	out.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(out.Z))
	return out
}
