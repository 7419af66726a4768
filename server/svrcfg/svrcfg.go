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

// Package svrcfg 定義 HTTP key service 的設定與請求上限。
package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/server/logger"
	"github.com/zintix-labs/splitkey/setting"
)

// 預設上限
const (
	DefaultMaxBits         = 1 << 20 // 單次 /v1/bits 最多元素數
	DefaultMaxSplit        = 1 << 16 // 單次 /v1/split 最多子 key 數
	DefaultMaxAuditSamples = 1 << 22 // 單次 /v1/audit 每個演算法最多樣本數
	DefaultAuditTimeout    = 30 * time.Second
)

type SvrCfg struct {
	Log             *slog.Logger
	Addr            string                // 監聽位址，空字串用 netsvr 預設
	Audit           *setting.AuditSetting // /v1/audit 的基底設定
	MaxBits         int
	MaxSplit        int
	MaxAuditSamples int
	AuditTimeout    time.Duration
}

// Valid 補齊預設值並做最基本的檢查。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeDev)
	}
	if sc.Audit == nil {
		sc.Audit = setting.Default()
	}
	sc.MaxBits = clamp(sc.MaxBits, DefaultMaxBits, 1, 1<<26)
	sc.MaxSplit = clamp(sc.MaxSplit, DefaultMaxSplit, 1, 1<<20)
	sc.MaxAuditSamples = clamp(sc.MaxAuditSamples, DefaultMaxAuditSamples, 1, 1<<26)
	if sc.AuditTimeout <= 0 {
		sc.AuditTimeout = DefaultAuditTimeout
	}
	if sc.Audit.Samples > sc.MaxAuditSamples {
		return errs.Coded(errs.CodeInvalidSetting, "audit samples %d exceed server limit %d", sc.Audit.Samples, sc.MaxAuditSamples)
	}
	return nil
}

// clamp 零值取預設，其餘限制在 [lo, hi]。
func clamp(v, def, lo, hi int) int {
	if v == 0 {
		return def
	}
	return min(hi, max(lo, v))
}
