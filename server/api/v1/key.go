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

// Package v1 實作 /v1 的 key service handlers。
package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/splitkey"
	"github.com/zintix-labs/splitkey/dto"
	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
	"github.com/zintix-labs/splitkey/server/httperr"
	"github.com/zintix-labs/splitkey/server/svrcfg"
)

// KeyHandler 提供 seed / split / fold_in / random_bits；所有操作皆為純函式，handler 不持有狀態。
type KeyHandler struct {
	log      *slog.Logger
	maxBits  int
	maxSplit int
}

func NewKeyHandler(sCfg *svrcfg.SvrCfg) *KeyHandler {
	return &KeyHandler{log: sCfg.Log, maxBits: sCfg.MaxBits, maxSplit: sCfg.MaxSplit}
}

// Impls 列出已註冊的演算法。
func (h *KeyHandler) Impls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.log, dto.FromImpls(core.Impls()))
}

// Seed GET ?impl=&seed= 或 POST {"impl","seed"}。
func (h *KeyHandler) Seed(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSeedRequest(r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	k, err := req.Parse()
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, h.log, dto.FromTypedKey(k))
}

func (h *KeyHandler) Split(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeJSON[dto.SplitRequest](r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	if req.Count > h.maxSplit {
		httperr.Errs(w, r, errs.Coded(errs.CodeInvalidCount, "count %d exceeds server limit %d", req.Count, h.maxSplit))
		return
	}
	k, err := req.Typed()
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	kids, err := k.Split(req.Count)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	out := dto.FromSplit(kids)
	out.Impl = k.Impl.String()
	writeJSON(w, r, h.log, out)
}

func (h *KeyHandler) FoldIn(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeJSON[dto.FoldInRequest](r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	k, err := req.Typed()
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	folded, err := k.FoldIn(req.Data)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, h.log, dto.FromTypedKey(folded))
}

func (h *KeyHandler) Bits(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeJSON[dto.BitsRequest](r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	k, err := req.Typed()
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	if req.Width == 0 {
		req.Width = 32
	}
	// 先檢查元素數上限再產生，避免超大 shape 佔用記憶體
	size := 1
	for _, d := range req.Shape {
		if d < 0 {
			break // 交給 RandomBits 回報 invalid shape
		}
		if d > 0 && size > h.maxBits/d {
			httperr.Errs(w, r, errs.Coded(errs.CodeInvalidShape, "shape %v exceeds server limit of %d elements", req.Shape, h.maxBits))
			return
		}
		size *= d
	}
	b, err := k.RandomBits(req.Shape, req.Width)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, h.log, dto.FromBits(k.Impl, b))
}

// AuditHandler 在請求期限內執行統計檢定。
type AuditHandler struct {
	sCfg *svrcfg.SvrCfg
}

func NewAuditHandler(sCfg *svrcfg.SvrCfg) *AuditHandler {
	return &AuditHandler{sCfg: sCfg}
}

func (h *AuditHandler) Audit(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeJSON[dto.AuditRequest](r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	as, err := req.Apply(h.sCfg.Audit)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	if as.Samples > h.sCfg.MaxAuditSamples {
		httperr.Errs(w, r, errs.Coded(errs.CodeInvalidSetting, "samples %d exceed server limit %d", as.Samples, h.sCfg.MaxAuditSamples))
		return
	}
	// 請求解析完成，設置超時 context
	ctx, cancel := context.WithTimeout(r.Context(), h.sCfg.AuditTimeout)
	defer cancel()

	a, err := splitkey.NewAuditor(as, h.sCfg.Log)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	reps, err := a.RunAll(ctx)
	if err != nil {
		httperr.Log(h.sCfg.Log, "audit failed", err)
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, h.sCfg.Log, dto.FromReports(reps))
}

// writeJSON 先編碼到記憶體再寫出，避免寫到一半才發生錯誤。
func writeJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httperr.Log(log, "encode response", err)
		httperr.Errs(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(b, '\n'))
}
