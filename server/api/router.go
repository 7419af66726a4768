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

// Package api 組裝 middleware 與 /v1 路由。
package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/splitkey/server/api/v1"
	"github.com/zintix-labs/splitkey/server/netsvr"
	"github.com/zintix-labs/splitkey/server/netsvr/middleware"
	"github.com/zintix-labs/splitkey/server/svrcfg"
)

func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerHealth(svr)               // 2. 健康檢查
	registerV1API(svr, sCfg)          // 3. 註冊 v1 api
}

func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func registerHealth(svr netsvr.NetRouter) {
	svr.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	k := v1.NewKeyHandler(sCfg)
	a := v1.NewAuditHandler(sCfg)
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/impls", k.Impls)
		vOne.Get("/seed", k.Seed)

		vOne.Post("/seed", k.Seed)
		vOne.Post("/split", k.Split)
		vOne.Post("/foldin", k.FoldIn)
		vOne.Post("/bits", k.Bits)
		vOne.Post("/audit", a.Audit)
	})
}
