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

// Package server 組裝 HTTP key service：設定檢查、路由註冊與生命週期。
package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/server/api"
	"github.com/zintix-labs/splitkey/server/app"
	"github.com/zintix-labs/splitkey/server/netsvr"
	"github.com/zintix-labs/splitkey/server/svrcfg"
)

// Run 以 chi adapter 啟動服務，WriteTimeout 配合 AuditTimeout。
func Run(sCfg *svrcfg.SvrCfg, extra ...app.Component) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	svr := netsvr.NewChiServerWith(sCfg.Addr, netsvr.Timeouts{Write: sCfg.AuditTimeout + 5*time.Second})
	return RunWithSvr(sCfg, svr, extra...)
}

// RunWithSvr 使用外部提供的 NetSvr；extra 會與 server 一起被管理（例如 flush async logger）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr, extra ...app.Component) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	// 註冊 Api
	api.RegisterRoutes(svr, sCfg)

	// 運行：extra 先註冊，關閉時反序執行，server 會先停止
	a := app.New().WithLogger(sCfg.Log)
	for _, c := range extra {
		a.Register(c)
	}
	a.Register(svr)
	sCfg.Log.Info("[splitkey] listening", slog.String("addr", svr.Address()))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
