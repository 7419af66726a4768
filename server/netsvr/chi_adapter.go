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

package netsvr

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultAddr string = ":5870"

// Timeouts http.Server 的逾時設定；零值欄位使用預設值。
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

var defaultTimeouts = Timeouts{
	Read:  10 * time.Second,
	Write: 10 * time.Second,
	Idle:  120 * time.Second,
}

func (t Timeouts) norm() Timeouts {
	if t.Read <= 0 {
		t.Read = defaultTimeouts.Read
	}
	if t.Write <= 0 {
		t.Write = defaultTimeouts.Write
	}
	if t.Idle <= 0 {
		t.Idle = defaultTimeouts.Idle
	}
	return t
}

// ChiAdapter 以 chi (基於標準庫 net/http) 實作 NetSvr。
type ChiAdapter struct {
	router chi.Router
	server *http.Server
	addr   string
}

// NewChiServer 建立 ChiAdapter；addr 為空字串時監聽 :5870。
func NewChiServer(addr string) *ChiAdapter {
	return NewChiServerWith(addr, Timeouts{})
}

// NewChiServerWith 同 NewChiServer，可自訂逾時（例如 /v1/audit 需要較長的 WriteTimeout）。
func NewChiServerWith(addr string, to Timeouts) *ChiAdapter {
	if addr == "" {
		addr = defaultAddr
	}
	to = to.norm()
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:         addr,
			Handler:      cr,
			ReadTimeout:  to.Read,
			WriteTimeout: to.Write,
			IdleTimeout:  to.Idle,
		},
		addr: addr,
	}
}

// -----------------------------------------------------------------------------
//  介面實作 NetSvr / (會同時實作 Component)
// -----------------------------------------------------------------------------

// Ready 確認 adapter 由建構函式建立且位址可解析。
func (c *ChiAdapter) Ready() bool {
	if c == nil || c.router == nil || c.server == nil || c.server.Handler != c.router {
		return false
	}
	_, _, err := net.SplitHostPort(c.addr)
	return err == nil
}

func (c *ChiAdapter) Run() error {
	err := c.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.router.ServeHTTP(w, r)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) {
	c.router.Use(mw)
}

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) {
	c.router.Get(path, h)
}

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) {
	c.router.Post(path, h)
}

func (c *ChiAdapter) Put(path string, h http.HandlerFunc) {
	c.router.Put(path, h)
}

func (c *ChiAdapter) Delete(path string, h http.HandlerFunc) {
	c.router.Delete(path, h)
}

// Group 的子路由只拿得到 NetRouter，無法控制 server 啟停。
func (c *ChiAdapter) Group(path string, fn func(subRouter NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&chiRouter{router: r})
	})
}

func (c *ChiAdapter) Address() string {
	return c.addr
}

// chiRouter 是 Group 內使用的純路由包裝
type chiRouter struct {
	router chi.Router
}

func (r *chiRouter) Use(mw func(http.Handler) http.Handler) { r.router.Use(mw) }
func (r *chiRouter) Get(path string, h http.HandlerFunc)    { r.router.Get(path, h) }
func (r *chiRouter) Post(path string, h http.HandlerFunc)   { r.router.Post(path, h) }
func (r *chiRouter) Put(path string, h http.HandlerFunc)    { r.router.Put(path, h) }
func (r *chiRouter) Delete(path string, h http.HandlerFunc) { r.router.Delete(path, h) }

func (r *chiRouter) Group(path string, fn func(NetRouter)) {
	r.router.Route(path, func(sub chi.Router) {
		fn(&chiRouter{router: sub})
	})
}
