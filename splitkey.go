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

// Package splitkey 是可分裂（splittable）、無狀態的決定性亂數框架的組裝入口。
//
// 亂數核心在 sdk 之下：
//   - sdk/threefry：ARX 混合原語與 Threefry-2x32 block generator。
//   - sdk/rbg：Philox 計數器為底的 RBG 與 unsafe RBG。
//   - sdk/core：PRNGImpl 註冊表與 key 生命週期（seed / split / fold_in / random_bits）。
//
// 本套件提供 Auditor：依 setting.AuditSetting 把 root key 分裂給多個 worker，
// 平行產生樣本並以 stats 的檢定合併成報表。
//
//	as := setting.Default()
//	a, _ := splitkey.NewAuditor(as, nil)
//	reps, _ := a.RunAll(context.Background())
//	for _, r := range reps {
//		r.StdOut()
//	}
package splitkey

import (
	"log/slog"

	"github.com/zintix-labs/splitkey/setting"
)

// DefaultAuditor 使用內嵌預設設定建立 Auditor。
func DefaultAuditor(log *slog.Logger) *Auditor {
	a, _ := NewAuditor(setting.Default(), log)
	return a
}
