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
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 壓縮等級
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// encoder 可重複使用的壓縮器
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
}

type codec struct {
	name string
	pool sync.Pool
}

// codecs 依偏好順序排列：zstd 優先，其次 gzip。
var codecs = []*codec{
	{name: "zstd", pool: sync.Pool{New: func() any {
		zw, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(DefaultCompressConfig.ZstdLevel),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(err)
		}
		return zw
	}}},
	{name: "gzip", pool: sync.Pool{New: func() any {
		gw, err := gzip.NewWriterLevel(nil, DefaultCompressConfig.GzipLevel)
		if err != nil {
			panic(err)
		}
		return gw
	}}},
}

// negotiate 依 Accept-Encoding 選出 codec；不接受任何壓縮時回傳 nil。
func negotiate(accept string) *codec {
	accept = strings.ToLower(accept)
	for _, c := range codecs {
		if strings.Contains(accept, c.name) {
			return c
		}
	}
	return nil
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

// 204 No Content, 304 Not Modified, 1xx Informational
func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// --- ResponseWriter Wrapper ---

type compressResponseWriter struct {
	http.ResponseWriter
	enc      encoder
	disabled bool // 204/304 等無 body 回應時取消壓縮
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		if f, ok := cw.enc.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應內容。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || isWebSocketUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}
		c := negotiate(r.Header.Get("Accept-Encoding"))
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", c.name)
		w.Header().Add("Vary", "Accept-Encoding")

		enc := c.pool.Get().(encoder)
		enc.Reset(w)
		cw := &compressResponseWriter{ResponseWriter: w, enc: enc}
		defer func() {
			// 無 body 的回應不能寫入壓縮 footer
			if cw.disabled {
				enc.Reset(io.Discard)
			}
			_ = enc.Close()
			c.pool.Put(enc)
		}()

		next.ServeHTTP(cw, r)
	})
}
