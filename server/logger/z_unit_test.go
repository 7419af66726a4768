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

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{
		"dev":         ModeDev,
		"ModeProd":    ModeProd,
		" SILENCE ":   ModeSilence,
		"modesilence": ModeSilence,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("verbose"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if ModeProd.String() != "prod" {
		t.Fatalf("unexpected mode name %q", ModeProd.String())
	}
}

func TestNewLoggerToProdIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, ModeProd)
	log.Debug("hidden")
	log.Info("audit done", slog.String("impl", "rbg_prng_impl"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "audit done" || rec["impl"] != "rbg_prng_impl" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	out := &lockedBuffer{}
	ah := NewAsyncHandler(slog.NewTextHandler(out, nil), 64)
	log := slog.New(ah).With(slog.String("svc", "splitkey"))
	for i := 0; i < 10; i++ {
		log.Info("tick", slog.Int("i", i))
	}
	ah.Close()
	if n := strings.Count(out.String(), "msg=tick"); n+int(ah.Dropped()) != 10 {
		t.Fatalf("written %d dropped %d", n, ah.Dropped())
	}
	if !strings.Contains(out.String(), "svc=splitkey") {
		t.Fatalf("attrs lost: %q", out.String())
	}
	log.Info("after close")
	if strings.Contains(out.String(), "after close") {
		t.Fatalf("record accepted after close")
	}
}
