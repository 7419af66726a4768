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
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
	"github.com/zintix-labs/splitkey/setting"
	"github.com/zintix-labs/splitkey/stats"
)

// chunk 每次向 key 取用的樣本數（每個 chunk 以 fold_in 衍生一把新 key）。
const chunk int = 4096

// corrSamples 為跨 key 相關性檢定的樣本數。
const corrSamples int = 1 << 14

// Auditor 以設定檔對已註冊的演算法執行統計檢定。
// 同一組 seed 與 workers 下，報表數值（用時除外）完全可重現。
type Auditor struct {
	as     *setting.AuditSetting
	log    *slog.Logger
	showpb bool
}

// NewAuditor 建立 Auditor；log 為 nil 時不輸出日誌。
func NewAuditor(as *setting.AuditSetting, log *slog.Logger) (*Auditor, error) {
	if as == nil {
		return nil, errs.Coded(errs.CodeInvalidSetting, "audit setting required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Auditor{as: as, log: log}, nil
}

// ShowProgress 開關進度條（預設關閉）。
func (a *Auditor) ShowProgress(show bool) *Auditor {
	a.showpb = show
	return a
}

func (a *Auditor) Setting() *setting.AuditSetting { return a.as }

// RunAll 依設定檔的順序對每個演算法執行 Run。
func (a *Auditor) RunAll(ctx context.Context) ([]*stats.Report, error) {
	kinds := a.as.Kinds()
	out := make([]*stats.Report, 0, len(kinds))
	for _, k := range kinds {
		r, err := a.Run(ctx, k)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Keys 回傳 kind 在目前設定下衍生的 root / stream / check 三把 key（依序）。
// 同一組 seed 永遠得到相同的 key，可輸出保存後在其他機器上比對。
func (a *Auditor) Keys(kind core.Kind) ([]core.TypedKey, error) {
	root, err := core.SeedWithImpl(kind, a.as.Seed)
	if err != nil {
		return nil, err
	}
	halves, err := root.Split(2)
	if err != nil {
		return nil, err
	}
	return append([]core.TypedKey{root}, halves...), nil
}

// Run 對單一演算法執行完整檢定。
//
// root key 先 split 成兩把：
//   - stream：第 c 個 chunk 的樣本由 FoldIn(stream, c) 產生，chunk 再分派給 worker，
//     因此報表數值與 Workers 無關。
//   - check：結構性檢定（寬度組合、split 唯一性、fold_in 發散、兄弟 key 相關性）。
func (a *Auditor) Run(ctx context.Context, kind core.Kind) (*stats.Report, error) {
	as := a.as
	im, err := core.ImplOf(kind)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := a.log.With(slog.String("impl", im.Name), slog.Int64("seed", as.Seed))
	log.Info("audit start", slog.Int("workers", as.Workers), slog.Int("samples", as.Samples))

	keys, err := a.Keys(kind)
	if err != nil {
		return nil, err
	}
	stream, check := keys[1].Data, keys[2].Data

	rep := &stats.Report{
		Impl:      im.Name,
		Seed:      as.Seed,
		Workers:   as.Workers,
		Samples:   as.Samples,
		Width:     as.Width,
		Alpha:     as.Alpha,
		WeakSplit: im.WeakSplit,
	}

	tallies, err := a.sample(ctx, kind, stream)
	if err != nil {
		log.Warn("audit aborted", slog.Any("err", err))
		return nil, err
	}
	total := tallies[0]
	for _, t := range tallies[1:] {
		if err := total.merge(t); err != nil {
			return nil, err
		}
	}
	rep.Uniform = total.hist.ChiSquared()
	rep.ByteUnif = total.bytes.ChiSquared()
	rep.Monobit = total.ones.Monobit()

	if err := a.structural(ctx, kind, check, rep); err != nil {
		log.Warn("audit aborted", slog.Any("err", err))
		return nil, err
	}

	rep.Used = time.Since(start)
	rep.Done()
	log.Info("audit done", slog.Bool("passed", rep.Passed()), slog.Duration("used", rep.Used))
	return rep, nil
}

// tally 單一 worker 的累積結果
type tally struct {
	hist  *stats.Histogram
	bytes *stats.Histogram
	ones  *stats.BitCounter
}

func newTally(width, buckets int) (*tally, error) {
	h, err := stats.NewHistogram(width, buckets)
	if err != nil {
		return nil, err
	}
	b, err := stats.NewHistogram(8, 256)
	if err != nil {
		return nil, err
	}
	return &tally{hist: h, bytes: b, ones: stats.NewBitCounter(width)}, nil
}

func (t *tally) merge(o *tally) error {
	if err := t.hist.Merge(o.hist); err != nil {
		return err
	}
	if err := t.bytes.Merge(o.bytes); err != nil {
		return err
	}
	t.ones.Merge(o.ones)
	return nil
}

// record 累積一批樣本；bytes 為重複利用的緩衝。
func (t *tally) record(samples []uint64, width int, bytes []uint64) []uint64 {
	t.hist.Add(samples)
	t.ones.Add(samples)
	bytes = bytes[:0]
	for _, v := range samples {
		for s := 0; s < width; s += 8 {
			bytes = append(bytes, (v>>s)&0xff)
		}
	}
	t.bytes.Add(bytes)
	return bytes
}

// sample 平行產生樣本：共 ceil(Samples/chunk) 個 chunk，worker 從 jobs 取 chunk 編號。
// 累積結果只是計數加總，合併後與 chunk 落在哪個 worker 無關。
func (a *Auditor) sample(ctx context.Context, kind core.Kind, stream core.Key) ([]*tally, error) {
	as := a.as
	mp := as.Workers
	nchunks := (as.Samples + chunk - 1) / chunk
	tallies := make([]*tally, mp)
	var err error
	for i := range tallies {
		if tallies[i], err = newTally(as.Width, as.Buckets); err != nil {
			return nil, err
		}
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make([]error, mp)

	jobs := make(chan int, mp)
	go func() {
		defer close(jobs)
		for c := 0; c < nchunks; c++ {
			select {
			case jobs <- c:
			case <-wctx.Done():
				return
			}
		}
	}()

	bar := pb.New(as.Samples)
	if !a.showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	for w := 0; w < mp; w++ {
		go func(w int) {
			defer wg.Done()
			buf := make([]uint64, 0, chunk*8)
			for c := range jobs {
				if err := a.work(wctx, kind, stream, c, tallies[w], buf, bar); err != nil {
					errc[w] = err
					cancel()
					return
				}
			}
		}(w)
	}
	wg.Wait()
	bar.Finish()

	for _, err := range errc {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tallies, nil
}

// work 產生第 c 個 chunk：key 為 FoldIn(stream, c)，最後一個 chunk 可能不滿。
func (a *Auditor) work(ctx context.Context, kind core.Kind, stream core.Key, c int, t *tally, buf []uint64, bar *pb.ProgressBar) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := min(chunk, a.as.Samples-c*chunk)
	k, err := core.FoldIn(kind, stream, uint32(c))
	if err != nil {
		return err
	}
	b, err := core.RandomBits(kind, k, []int{n}, a.as.Width)
	if err != nil {
		return err
	}
	t.record(b.Data, a.as.Width, buf)
	bar.Add(n)
	return nil
}
