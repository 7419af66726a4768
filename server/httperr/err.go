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

// Package httperr 把內部錯誤映射成 HTTP 狀態碼與 JSON 錯誤本文。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/server/netsvr/middleware"
)

// Body 對外輸出的錯誤本文
type Body struct {
	Status    int    `json:"status"`
	Level     string `json:"level,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusCode 決定 err 的狀態碼：
//   - context 逾時 504、取消 408（即使被 wrap 也能被 errors.Is 命中）。
//   - errs.Warn（呼叫端參數錯誤）400。
//   - errs.Fatal 與其他錯誤 500。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 寫回 JSON 錯誤本文。err 為 nil 時不動作。
func Errs(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	b := Body{Status: StatusCode(err), Message: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		b.Level = errs.ErrLv(e.ErrLv)
		b.Code = e.Code.String()
	}
	if r != nil {
		b.RequestID = middleware.GetReqId(r)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(b.Status)
	_ = json.NewEncoder(w).Encode(b)
}

// Log 只記錄需要關注的錯誤：408/409/429 為 Warn，5xx 為 Error；其餘 4xx 由 access log 涵蓋。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500 && status < 600:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
