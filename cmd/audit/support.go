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

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/zintix-labs/splitkey"
	"github.com/zintix-labs/splitkey/corefmt"
	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
	"github.com/zintix-labs/splitkey/server/logger"
	"github.com/zintix-labs/splitkey/setting"
	"github.com/zintix-labs/splitkey/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// errFailed 檢定未全部通過
var errFailed = errors.New("audit verdict failed")

type config struct {
	configPath string
	impls      string
	workers    int
	samples    int
	seed       int64
	format     string
	logMode    string
	pprofmode  string
	noBar      bool
	dumpKeys   string
	verifyKeys string

	set map[string]bool // 有被明確指定的旗標
	log *slog.Logger
}

func bindVar() *config {
	cfg := &config{set: map[string]bool{}}
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.configPath, "config", "", "audit setting file (.yaml/.yml/.json); empty uses the embedded default")
	flag.StringVar(&cfg.impls, "impl", "", "comma separated impls, e.g. threefry,rbg,unsafe_rbg")
	flag.IntVar(&cfg.workers, "workers", 0, "number of workers")
	flag.IntVar(&cfg.samples, "samples", 0, "samples per impl")
	flag.Int64Var(&cfg.seed, "seed", 0, "int64 root seed; negative picks a random seed")
	flag.StringVar(&cfg.format, "format", "table", "output: table, json, yaml")
	flag.StringVar(&cfg.logMode, "log-mode", "silence", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	flag.BoolVar(&cfg.noBar, "no-bar", false, "hide progress bar")
	flag.StringVar(&cfg.dumpKeys, "dump-keys", "", "write the derived root/stream/check keys to this file")
	flag.StringVar(&cfg.verifyKeys, "verify-keys", "", "check the derived keys against a file written by -dump-keys")

	flag.Parse()
	flag.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })

	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.log = logger.NewDefaultLogger(mode)
	return cfg
}

// setting 讀取設定檔並套用明確指定的旗標
func (cfg *config) setting() (*setting.AuditSetting, error) {
	as := setting.Default()
	if cfg.configPath != "" {
		loaded, err := setting.Load(os.DirFS(filepath.Dir(cfg.configPath)), filepath.Base(cfg.configPath))
		if err != nil {
			return nil, err
		}
		as = loaded
	}
	if cfg.set["impl"] {
		as.Impls = nil
		for _, s := range strings.Split(cfg.impls, ",") {
			if s = strings.TrimSpace(s); s != "" {
				as.Impls = append(as.Impls, s)
			}
		}
	}
	if cfg.set["workers"] {
		as.Workers = cfg.workers
	}
	if cfg.set["samples"] {
		as.Samples = cfg.samples
	}
	if cfg.set["seed"] {
		as.Seed = cfg.seed
		// given seed illegal -> random seed
		if as.Seed < 0 {
			s, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
			if err != nil {
				return nil, errs.Wrap(err, "random seed")
			}
			as.Seed = s.Int64()
		}
	}
	if err := as.Init(); err != nil {
		return nil, err
	}
	return as, nil
}

// execute 跑完所有設定的演算法並輸出報表
func (cfg *config) execute() error {
	as, err := cfg.setting()
	if err != nil {
		return err
	}
	render, err := stats.RenderByName(cfg.format)
	if err != nil {
		return err
	}
	a, err := splitkey.NewAuditor(as, cfg.log)
	if err != nil {
		return err
	}
	kinds := as.Kinds()
	if cfg.verifyKeys != "" {
		if err := verifyKeys(cfg.verifyKeys, a, kinds); err != nil {
			return err
		}
	}
	if cfg.dumpKeys != "" {
		if err := dumpKeys(cfg.dumpKeys, a, kinds); err != nil {
			return err
		}
	}
	table := strings.EqualFold(cfg.format, "table") || cfg.format == ""
	a.ShowProgress(table && !cfg.noBar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	passed := true
	for i, kind := range kinds {
		if table {
			root, err := core.SeedWithImpl(kind, as.Seed)
			if err != nil {
				return err
			}
			p.Printf("%s[IMPL:%s] [SEED:%d] [ROOT:%s] [WORKERS:%d] [SAMPLES:%d]%s\n",
				green, kind, as.Seed, corefmt.EncodeHex(root), as.Workers, as.Samples, reset)
		}
		rep, err := a.Run(ctx, kind)
		if err != nil {
			return err
		}
		if !table && i > 0 && strings.HasPrefix(strings.ToLower(cfg.format), "y") {
			fmt.Println("---")
		}
		if err := rep.WriteWith(os.Stdout, render); err != nil {
			return errs.Wrap(err, "write report")
		}
		passed = passed && rep.Passed()
	}
	if !passed {
		return errFailed
	}
	return nil
}

// exitCode 1：檢定未通過；2：參數錯誤；3：其他錯誤。
func exitCode(err error) int {
	switch {
	case errors.Is(err, errFailed):
		return 1
	case errs.IsInvalidArgument(err):
		return 2
	default:
		return 3
	}
}
