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
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var payload = strings.Repeat(`{"impl":"threefry_prng_impl","key":[0,42]}`, 64)

func echo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, payload)
}

func TestCompressionNegotiation(t *testing.T) {
	h := Compression(http.HandlerFunc(echo))
	cases := []struct {
		accept string
		want   string
		decode func(io.Reader) ([]byte, error)
	}{
		{"gzip, deflate", "gzip", func(r io.Reader) ([]byte, error) {
			gr, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.ReadAll(gr)
		}},
		{"zstd, gzip", "zstd", func(r io.Reader) ([]byte, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			defer zr.Close()
			return io.ReadAll(zr)
		}},
		{"", "", io.ReadAll},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if c.accept != "" {
			req.Header.Set("Accept-Encoding", c.accept)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Content-Encoding"); got != c.want {
			t.Fatalf("accept %q: encoding %q want %q", c.accept, got, c.want)
		}
		body, err := c.decode(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("accept %q: decode: %v", c.accept, err)
		}
		if string(body) != payload {
			t.Fatalf("accept %q: body mismatch", c.accept)
		}
	}
}

func TestCompressionNoBody(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("unexpected 204 response: code=%d len=%d enc=%q", rec.Code, rec.Body.Len(), rec.Header().Get("Content-Encoding"))
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	})))
	req := httptest.NewRequest(http.MethodPost, "/v1/split", nil)
	req.Header.Set(HeaderRequestID, "abc-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) != "abc-1" {
		t.Fatalf("request id not echoed: %q", rec.Header().Get(HeaderRequestID))
	}
	out := buf.String()
	for _, want := range []string{"msg=http.access", "status=400", "level=WARN", "req_id=abc-1", "path=/v1/split"} {
		if !strings.Contains(out, want) {
			t.Fatalf("access log missing %q: %s", want, out)
		}
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic=boom") {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}
