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
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// Report 單一演算法的檢定報告
type Report struct {
	Impl      string        `json:"Impl"`
	Seed      int64         `json:"Seed"`
	Workers   int           `json:"Workers"`
	Samples   int           `json:"Samples"`
	Width     int           `json:"Width"`
	Alpha     float64       `json:"Alpha"`
	Uniform   ChiSquared    `json:"Uniform"`
	ByteUnif  ChiSquared    `json:"ByteUniform"`
	Monobit   Monobit       `json:"Monobit"`
	CrossCorr float64       `json:"CrossCorr"`
	Compose   bool          `json:"Compose"`
	SplitKeys int           `json:"SplitKeys"`
	SplitDups int           `json:"SplitDups"`
	FoldDups  int           `json:"FoldDups"`
	Siblings  Agreement     `json:"Siblings"`
	WeakSplit bool          `json:"WeakSplit"`
	Used      time.Duration `json:"Used"`
	Verdicts  []Verdict     `json:"Verdicts"`
	isDone    bool
}

// Verdict 單項檢定結論
type Verdict struct {
	Name string `json:"Name"`
	Pass bool   `json:"Pass"`
	Note string `json:"Note,omitempty"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 根據 Alpha 產生各項檢定結論，只會執行一次。
func (r *Report) Done() {
	if r.isDone {
		return
	}
	p := message.NewPrinter(lang)
	r.Verdicts = []Verdict{
		{Name: "uniformity", Pass: r.Uniform.Pass(r.Alpha), Note: p.Sprintf("p=%.4f", r.Uniform.PValue)},
		{Name: "byte uniformity", Pass: r.ByteUnif.Pass(r.Alpha), Note: p.Sprintf("p=%.4f", r.ByteUnif.PValue)},
		{Name: "monobit", Pass: r.Monobit.Pass(r.Alpha), Note: p.Sprintf("p=%.4f", r.Monobit.PValue)},
		{Name: "cross-key correlation", Pass: r.CrossCorr < 0.05 && r.CrossCorr > -0.05, Note: p.Sprintf("r=%.4f", r.CrossCorr)},
		{Name: "width composition", Pass: r.Compose},
		{Name: "split uniqueness", Pass: r.SplitDups == 0, Note: p.Sprintf("%d keys", r.SplitKeys)},
		{Name: "fold_in divergence", Pass: r.FoldDups == 0},
		r.siblingVerdict(p),
	}
	r.isDone = true
}

// siblingVerdict：一般演算法要求兄弟 key 獨立；WeakSplit 的演算法（unsafe RBG）
// 兄弟 key 相關是已知取捨，檢出相關才符合預期，未檢出代表 split 行為與描述不符。
func (r *Report) siblingVerdict(p *message.Printer) Verdict {
	if r.WeakSplit {
		return Verdict{
			Name: "sibling correlation (expected)",
			Pass: !r.Siblings.Pass(r.Alpha),
			Note: p.Sprintf("corr=%.4f", r.Siblings.BitCorr),
		}
	}
	return Verdict{Name: "sibling independence", Pass: r.Siblings.Pass(r.Alpha), Note: p.Sprintf("corr=%.4f", r.Siblings.BitCorr)}
}

// Passed 回報是否所有檢定都通過。
func (r *Report) Passed() bool {
	r.Done()
	for _, v := range r.Verdicts {
		if !v.Pass {
			return false
		}
	}
	return true
}

func (r *Report) WriteWith(w io.Writer, rep ReportRender) error {
	r.Done()
	return rep.Write(w, r)
}

// StdOut 以表格輸出到標準輸出。
func (r *Report) StdOut() {
	r.Fprint(os.Stdout)
}

// Fprint 以表格輸出。
func (r *Report) Fprint(w io.Writer) {
	r.Done()
	fmt.Fprint(w, formatDuration(r.Used, r.Samples))
	keys, msg := r.fmtBasic()
	fmt.Fprintln(w, fmtTable(r.Impl, keys, msg))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, samples int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(samples) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrate: %d samples/sec\n", sec, sps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrate: %d samples/sec\n", m, s, sps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrate: %d samples/sec\n", h, m, s, sps)
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	msg := map[string]string{
		"Seed":    fmt.Sprintf("%d", r.Seed),
		"Workers": p.Sprintf("%d", r.Workers),
		"Samples": p.Sprintf("%d x %d bits", r.Samples, r.Width),
		"Alpha":   p.Sprintf("%g", r.Alpha),
	}
	keys := []string{"Seed", "Workers", "Samples", "Alpha"}
	for _, v := range r.Verdicts {
		res := "PASS"
		if !v.Pass {
			res = "FAIL"
		}
		if v.Note != "" {
			res += " (" + v.Note + ")"
		}
		msg[v.Name] = res
		keys = append(keys, v.Name)
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
