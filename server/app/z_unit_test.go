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
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeComp struct {
	name  string
	runFn func(stop <-chan struct{}) error
	stop  chan struct{}
	once  sync.Once
	order *[]string
	mu    *sync.Mutex
}

func newFake(name string, order *[]string, mu *sync.Mutex, runFn func(<-chan struct{}) error) *fakeComp {
	return &fakeComp{name: name, runFn: runFn, stop: make(chan struct{}), order: order, mu: mu}
}

func (f *fakeComp) Run() error { return f.runFn(f.stop) }

func (f *fakeComp) Shutdown(context.Context) error {
	f.once.Do(func() { close(f.stop) })
	f.mu.Lock()
	*f.order = append(*f.order, f.name)
	f.mu.Unlock()
	return nil
}

func block(stop <-chan struct{}) error {
	<-stop
	return nil
}

func TestRunContextShutdownOrder(t *testing.T) {
	var order []string
	mu := new(sync.Mutex)
	a := NewWith(newFake("svr", &order, mu, block), newFake("log", &order, mu, block))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.RunContext(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "log" || order[1] != "svr" {
		t.Fatalf("shutdown order = %v", order)
	}
}

func TestRunContextComponentError(t *testing.T) {
	var order []string
	mu := new(sync.Mutex)
	boom := errors.New("listen failed")
	a := NewWith(
		newFake("svr", &order, mu, func(<-chan struct{}) error { return boom }),
		newFake("log", &order, mu, block),
	)
	if err := a.RunContext(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected component error, got %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("all components should be shut down, got %v", order)
	}
}

func TestOnShutdown(t *testing.T) {
	called := 0
	c := OnShutdown(func(context.Context) error {
		called++
		return nil
	})
	done := make(chan error, 1)
	go func() { done <- c.Run() }()
	_ = c.Shutdown(context.Background())
	_ = c.Shutdown(context.Background())
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if called != 1 {
		t.Fatalf("hook called %d times", called)
	}
}
