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

// Package perf 包裝 runtime/pprof，讓 cmd 以一個旗標切換 CPU / heap / allocs profiling。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/splitkey/errs"
)

// DefaultDir pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// Modes 支援的 profiling 模式；空字串代表不開啟。
var Modes = []string{"", "cpu", "heap", "allocs"}

// RunPProf 依 mode 執行 exe 並把 profile 寫到 dir（空字串用 DefaultDir）。
// 回傳 exe 的錯誤；profiling 本身失敗時回傳 Fatal。
func RunPProf(exe func() error, mode, dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "":
		return exe()
	case "cpu":
		return PProfCPU(exe, dir)
	case "heap":
		return snapshot(exe, dir, "heap", true)
	case "allocs":
		return snapshot(exe, dir, "allocs", false)
	default:
		return errs.Coded(errs.CodeInvalidSetting, "unknown pprof mode %q (want one of cpu, heap, allocs)", mode)
	}
}

// PProfCPU 在 exe 執行期間取樣 CPU，輸出 cpu.pprof；可作為 pgo 的 default.pgo 來源。
func PProfCPU(exe func() error, dir string) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "failed to start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 之後寫出一次 profile。heap 先 GC，讓 live objects 貼近最新狀態。
func snapshot(exe func() error, dir, name string, gc bool) error {
	exeErr := exe()
	if gc {
		runtime.GC()
	}
	f, err := create(dir, name)
	if err != nil {
		return err
	}
	defer f.Close()
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Fatalf("pprof profile %q not found", name)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "failed to write "+name+" profile")
	}
	return exeErr
}

func create(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "failed to create pprof dir")
	}
	f, err := os.Create(filepath.Join(dir, name+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "failed to create "+name+".pprof")
	}
	return f, nil
}
