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

// Package dto 定義 HTTP 邊界的請求/回應結構；key 以 word 陣列（[]uint32）或 corefmt 的 b64u 字串表示。
package dto

import (
	"github.com/zintix-labs/splitkey/corefmt"
	"github.com/zintix-labs/splitkey/sdk/core"
	"github.com/zintix-labs/splitkey/stats"
)

// KeyDTO 對外輸出的 typed key
type KeyDTO struct {
	Impl string   `json:"impl"` // 演算法名稱
	Key  []uint32 `json:"key"`  // key words
	Hex  string   `json:"hex"`  // 方便人工比對的十六進位表示
	B64U string   `json:"b64u"` // corefmt 可攜格式，可直接帶回請求
}

// ImplDTO 對外輸出的演算法描述
type ImplDTO struct {
	Name     string `json:"name"`
	KeyShape int    `json:"key_shape"`
	Doc      string `json:"doc"`
}

type SplitResult struct {
	Impl string     `json:"impl"`
	Keys [][]uint32 `json:"keys"`
}

type BitsResult struct {
	Impl  string   `json:"impl"`
	Shape []int    `json:"shape"`
	Width int      `json:"width"`
	Data  []uint64 `json:"data"` // row-major
}

type AuditResult struct {
	Passed  bool            `json:"passed"`
	Reports []*stats.Report `json:"reports"`
}

func FromTypedKey(k core.TypedKey) KeyDTO {
	return KeyDTO{Impl: k.Impl.String(), Key: k.KeyData(), Hex: k.Data.String(), B64U: corefmt.EncodeBase64URL(k)}
}

func FromImpls(ims []core.Impl) []ImplDTO {
	out := make([]ImplDTO, len(ims))
	for i, im := range ims {
		out[i] = ImplDTO{Name: im.Name, KeyShape: im.KeyShape, Doc: im.Doc}
	}
	return out
}

func FromSplit(keys []core.TypedKey) SplitResult {
	out := SplitResult{Keys: make([][]uint32, len(keys))}
	if len(keys) > 0 {
		out.Impl = keys[0].Impl.String()
	}
	for i, k := range keys {
		out.Keys[i] = k.KeyData()
	}
	return out
}

func FromBits(kind core.Kind, b core.Bits) BitsResult {
	return BitsResult{Impl: kind.String(), Shape: b.Shape, Width: b.Width, Data: b.Data}
}

func FromReports(reps []*stats.Report) AuditResult {
	out := AuditResult{Passed: true, Reports: reps}
	for _, r := range reps {
		if !r.Passed() {
			out.Passed = false
		}
	}
	return out
}
