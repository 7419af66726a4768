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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zintix-labs/splitkey/server"
	"github.com/zintix-labs/splitkey/server/app"
	"github.com/zintix-labs/splitkey/server/logger"
	"github.com/zintix-labs/splitkey/server/svrcfg"
	"github.com/zintix-labs/splitkey/setting"
)

// splitkey HTTP key service
//
//	go run ./cmd/svr -addr :5870 -log-mode prod
func main() {
	cfg, closer, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := server.Run(cfg, closer); err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr         string
	LogMode      string
	AuditConfig  string
	MaxBits      int
	MaxSplit     int
	AuditTimeout time.Duration
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, app.Component, error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", "", "listen address (default :5870)")
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.AuditConfig, "audit-config", "", "base audit setting for /v1/audit; empty uses the embedded default")
	flag.IntVar(&cfg.MaxBits, "max-bits", svrcfg.DefaultMaxBits, "max elements per /v1/bits request")
	flag.IntVar(&cfg.MaxSplit, "max-split", svrcfg.DefaultMaxSplit, "max children per /v1/split request")
	flag.DurationVar(&cfg.AuditTimeout, "audit-timeout", svrcfg.DefaultAuditTimeout, "deadline for /v1/audit")

	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, mode)

	as := setting.Default()
	if cfg.AuditConfig != "" {
		as, err = setting.Load(os.DirFS(filepath.Dir(cfg.AuditConfig)), filepath.Base(cfg.AuditConfig))
		if err != nil {
			return nil, nil, err
		}
	}
	sCfg := &svrcfg.SvrCfg{
		Log:          log,
		Addr:         cfg.Addr,
		Audit:        as,
		MaxBits:      cfg.MaxBits,
		MaxSplit:     cfg.MaxSplit,
		AuditTimeout: cfg.AuditTimeout,
	}
	// 關閉時 drain 非同步 logger
	closer := app.OnShutdown(func(context.Context) error {
		ah.Close()
		return nil
	})
	return sCfg, closer, nil
}
