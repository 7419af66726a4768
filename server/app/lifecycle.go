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

package app

import (
	"context"
	"sync"
)

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
// - Run() 應該是阻塞呼叫，直到元件停止為止（正常或錯誤）。
// - Shutdown(ctx) 用於要求優雅關閉；實作方應該尊重 ctx deadline/cancel。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// hook 只在關閉時執行的元件（例如 flush 非同步 logger）。
type hook struct {
	stop chan struct{}
	once sync.Once
	fn   func(ctx context.Context) error
}

// OnShutdown 把關閉函式包成 Component：Run 阻塞到 Shutdown 被呼叫為止。
func OnShutdown(fn func(ctx context.Context) error) Component {
	return &hook{stop: make(chan struct{}), fn: fn}
}

func (h *hook) Run() error {
	<-h.stop
	return nil
}

func (h *hook) Shutdown(ctx context.Context) error {
	first := false
	h.once.Do(func() {
		close(h.stop)
		first = true
	})
	if !first || h.fn == nil {
		return nil
	}
	return h.fn(ctx)
}
