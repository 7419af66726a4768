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

// Package corefmt 定義 typed key 的可攜格式，方便在 JSON/HTTP、log 與檔案之間傳遞 key。
//
// 二進位佈局：
//
//	kind(1 byte) || words(big-endian uint32 ...)
//
// 文字形式為上述 bytes 的 Base64URL（無 padding），hex 只用於輸出比對；檔案/串流使用 uvarint 長度前綴的 frame。
package corefmt

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
)

// MarshalKey 把 typed key 編成二進位佈局。
func MarshalKey(k core.TypedKey) []byte {
	out := make([]byte, 1, 1+4*len(k.Data))
	out[0] = byte(k.Impl)
	for _, w := range k.Data {
		out = binary.BigEndian.AppendUint32(out, w)
	}
	return out
}

// UnmarshalKey 解析二進位佈局，並檢查 kind 與 key shape。
func UnmarshalKey(b []byte) (core.TypedKey, error) {
	if len(b) < 1 || (len(b)-1)%4 != 0 {
		return core.TypedKey{}, errs.Coded(errs.CodeInvalidKeyShape, "malformed key payload of %d bytes", len(b))
	}
	kind := core.Kind(b[0])
	if _, err := core.ImplOf(kind); err != nil {
		return core.TypedKey{}, err
	}
	words := make([]uint32, (len(b)-1)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(b[1+4*i:])
	}
	return core.WrapKeyData(kind, words)
}

func EncodeBase64URL(k core.TypedKey) string {
	return base64.RawURLEncoding.EncodeToString(MarshalKey(k))
}

func DecodeBase64URL(s string) (core.TypedKey, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return core.TypedKey{}, errs.WrapWithExtra(errs.Warnf("decode base64url failed"), "key", err.Error())
	}
	return UnmarshalKey(b)
}

// EncodeHex 方便人工比對、貼進 log 的形式。
func EncodeHex(k core.TypedKey) string {
	return hex.EncodeToString(MarshalKey(k))
}

// WriteKeys 以 uvarint(len) || payload 的 frame 逐把寫出。
func WriteKeys(w io.Writer, keys ...core.TypedKey) error {
	var hdr [binary.MaxVarintLen64]byte
	for _, k := range keys {
		payload := MarshalKey(k)
		n := binary.PutUvarint(hdr[:], uint64(len(payload)))
		if _, err := w.Write(hdr[:n]); err != nil {
			return errs.Wrap(err, "write key frame header failed")
		}
		if _, err := w.Write(payload); err != nil {
			return errs.Wrap(err, "write key frame payload failed")
		}
	}
	return nil
}

// maxFrame 單把 key frame 的上限（kind + 最多 16 words）
const maxFrame = 1 + 4*16

// ReadKeys 讀到 EOF 為止；frame 損毀或被截斷時回報錯誤。
func ReadKeys(r io.Reader) ([]core.TypedKey, error) {
	br := bufio.NewReader(r)
	var out []core.TypedKey
	for {
		ln, err := binary.ReadUvarint(br)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errs.Wrap(err, "read key frame header failed")
		}
		if ln > maxFrame {
			return nil, errs.Coded(errs.CodeInvalidKeyShape, "key frame of %d bytes exceeds %d", ln, maxFrame)
		}
		buf := make([]byte, ln)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, errs.Wrap(err, "read key frame payload failed")
		}
		k, err := UnmarshalKey(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
}
