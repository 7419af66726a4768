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

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover 攔截 handler panic：記錄 stack 後回 500，不讓單一請求拖垮 server。
// http.ErrAbortHandler 照常往上拋。log 為 nil 時只回 500。
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if log != nil {
					log.LogAttrs(r.Context(), slog.LevelError, "http.panic",
						slog.String("req_id", GetReqId(r)),
						slog.String("path", r.URL.Path),
						slog.String("panic", fmt.Sprint(rec)),
						slog.String("stack", string(debug.Stack())),
					)
				}
				if r.Header.Get("Connection") != "Upgrade" {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
