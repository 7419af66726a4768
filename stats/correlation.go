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

package stats

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LaneCorrelation 回傳兩組樣本的 Pearson 相關係數；長度不同或少於 2 筆時回傳 0。
func LaneCorrelation(a, b []uint64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	x := make([]float64, len(a))
	y := make([]float64, len(b))
	for i := range a {
		x[i] = float64(a[i])
		y[i] = float64(b[i])
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Agreement 描述深度 split 後兄弟 key 之間的位元一致率。
//
// 對獨立的 key 而言，每個位元相同的機率為 1/2，即 BitCorr = 2*Mean-1 ≈ 0。
// BitCorr 明顯大於 0 代表兄弟 key 可區分（彼此相關）。
type Agreement struct {
	Depth   int     `json:"Depth"`
	Fanout  int     `json:"Fanout"`
	Pairs   int     `json:"Pairs"`
	Mean    float64 `json:"Mean"`
	Std     float64 `json:"Std"`
	BitCorr float64 `json:"BitCorr"`
	Z       float64 `json:"Z"`
	PValue  float64 `json:"PValue"`
}

func (a Agreement) Pass(alpha float64) bool { return a.PValue >= alpha }

// maxFrontier 限制每層展開的 key 數量，避免 fanout^depth 爆量。
const maxFrontier = 4096

// SiblingAgreement 從 root 開始重複 split depth 層，每層每把 key 分出 fanout 把子 key，
// 統計所有兄弟 key 兩兩之間相同位元的比例。
func SiblingAgreement(kind core.Kind, root core.Key, depth, fanout int) (Agreement, error) {
	if depth < 1 || fanout < 2 {
		return Agreement{}, errs.Coded(errs.CodeInvalidSetting, "sibling test needs depth >= 1 and fanout >= 2, got %d/%d", depth, fanout)
	}
	out := Agreement{Depth: depth, Fanout: fanout}
	frontier := []core.Key{root}
	samples := make([]float64, 0, 1024)
	keyBits := 32 * len(root)

	for d := 0; d < depth; d++ {
		next := make([]core.Key, 0, min(len(frontier)*fanout, maxFrontier))
		for _, k := range frontier {
			kids, err := core.Split(kind, k, fanout)
			if err != nil {
				return Agreement{}, err
			}
			for i := 0; i < len(kids); i++ {
				for j := i + 1; j < len(kids); j++ {
					samples = append(samples, agreement(kids[i], kids[j], keyBits))
				}
			}
			if len(next) < maxFrontier {
				next = append(next, kids[:min(len(kids), maxFrontier-len(next))]...)
			}
		}
		frontier = next
	}

	out.Pairs = len(samples)
	out.Mean, out.Std = stat.MeanStdDev(samples, nil)
	if len(samples) < 2 {
		out.Std = 0
	}
	out.BitCorr = 2*out.Mean - 1

	// H0：每個位元獨立且相同機率 1/2，平均值的標準誤為 0.5/sqrt(bits*pairs)
	se := 0.5 / math.Sqrt(float64(keyBits*out.Pairs))
	out.Z = (out.Mean - 0.5) / se
	out.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(out.Z))
	return out, nil
}

func agreement(a, b core.Key, keyBits int) float64 {
	diff := 0
	for i := range a {
		diff += bits.OnesCount32(a[i] ^ b[i])
	}
	return float64(keyBits-diff) / float64(keyBits)
}
