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

package splitkey

import (
	"context"

	"github.com/zintix-labs/splitkey/sdk/core"
	"github.com/zintix-labs/splitkey/stats"
)

// composeLen 寬度組合檢定使用的元素數
const composeLen int = 256

// structural 執行結構性檢定，結果寫入 rep。
func (a *Auditor) structural(ctx context.Context, kind core.Kind, key core.Key, rep *stats.Report) error {
	as := a.as
	keys, err := core.Split(kind, key, 4)
	if err != nil {
		return err
	}

	steps := []func() error{
		func() (err error) {
			rep.CrossCorr, err = crossCorrelation(kind, keys[0])
			return err
		},
		func() (err error) {
			rep.Compose, err = composition(kind, keys[1])
			return err
		},
		func() (err error) {
			rep.SplitKeys = as.SplitCount
			rep.SplitDups, rep.FoldDups, err = collisions(kind, keys[2], as.SplitCount, as.FoldCount)
			return err
		},
		func() (err error) {
			rep.Siblings, err = stats.SiblingAgreement(kind, keys[3], as.SplitDepth, as.SplitFanout)
			return err
		},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// crossCorrelation 兩把兄弟 key 的 32-bit 輸出之 Pearson 相關係數。
func crossCorrelation(kind core.Kind, key core.Key) (float64, error) {
	pair, err := core.Split(kind, key, 2)
	if err != nil {
		return 0, err
	}
	x, err := core.RandomBits(kind, pair[0], []int{corrSamples}, 32)
	if err != nil {
		return 0, err
	}
	y, err := core.RandomBits(kind, pair[1], []int{corrSamples}, 32)
	if err != nil {
		return 0, err
	}
	return stats.LaneCorrelation(x.Data, y.Data), nil
}

// composition 檢查 64/16/8-bit 輸出是否由同一把 key 的 32-bit 字組依固定規則組成。
func composition(kind core.Kind, key core.Key) (bool, error) {
	w64, err := core.RandomBits(kind, key, []int{composeLen}, 64)
	if err != nil {
		return false, err
	}
	w32, err := core.RandomBits(kind, key, []int{2 * composeLen}, 32)
	if err != nil {
		return false, err
	}
	for i := 0; i < composeLen; i++ {
		if w64.Data[i] != w32.Data[i]<<32|w32.Data[composeLen+i] {
			return false, nil
		}
	}
	for _, width := range []int{8, 16} {
		lanes := 32 / width
		narrow, err := core.RandomBits(kind, key, []int{2 * composeLen * lanes}, width)
		if err != nil {
			return false, err
		}
		mask := uint64(1)<<width - 1
		for e, v := range narrow.Data {
			w := w32.Data[e/lanes]
			if v != (w>>(width*(e%lanes)))&mask {
				return false, nil
			}
		}
	}
	return true, nil
}

// collisions 回傳 split 子 key 與 fold_in 衍生 key 的重複數量（含與 parent 相同者）。
func collisions(kind core.Kind, key core.Key, splitN, foldN int) (int, int, error) {
	kids, err := core.Split(kind, key, splitN)
	if err != nil {
		return 0, 0, err
	}
	splitDups := dups(key, kids)

	folded := make([]core.Key, 0, foldN)
	for d := 0; d < foldN; d++ {
		k, err := core.FoldIn(kind, key, uint32(d))
		if err != nil {
			return 0, 0, err
		}
		folded = append(folded, k)
	}
	return splitDups, dups(key, folded), nil
}

func dups(parent core.Key, keys []core.Key) int {
	seen := make(map[string]struct{}, len(keys)+1)
	seen[parent.String()] = struct{}{}
	n := 0
	for _, k := range keys {
		s := k.String()
		if _, ok := seen[s]; ok {
			n++
			continue
		}
		seen[s] = struct{}{}
	}
	return n
}
