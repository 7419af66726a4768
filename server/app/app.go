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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"
)

const defaultGrace = 5 * time.Second

type App struct {
	comps []Component
	log   *slog.Logger
	grace time.Duration
}

func New() *App { return &App{log: slog.New(slog.DiscardHandler), grace: defaultGrace} }

func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// WithLogger 設定關閉錯誤的輸出；nil 忽略。
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

// WithGrace 設定優雅關閉的等待上限。
func (a *App) WithGrace(d time.Duration) *App {
	if d > 0 {
		a.grace = d
	}
	return a
}

// Run 等同 RunContext(context.Background())。
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext 啟動所有 Component，直到收到 SIGINT/SIGTERM、ctx 結束、或任一 Component 返回。
// 之後依註冊的反序關閉所有 Component，回傳第一個非 nil 的 Component 錯誤。
func (a *App) RunContext(ctx context.Context) error {
	if len(a.comps) == 0 {
		return nil
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// errCh 用於收集任一 Component 首次返回的結果
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	a.gracefulShutdown()
	return err
}

func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("shutdown err", slog.Any("err", err))
		}
	}
}
