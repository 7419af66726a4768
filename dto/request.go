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

package dto

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/zintix-labs/splitkey/corefmt"
	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
	"github.com/zintix-labs/splitkey/setting"
)

// maxBody POST body 上限（1MiB）
const maxBody = 1 << 20

// SeedRequest 由整數種子建立 root key。
// seed 以 JSON number 或十進位字串表示，可超過 64 位元（超過時走 SeedBig 的 hash 路徑）。
type SeedRequest struct {
	Impl string      `json:"impl"` // 缺省為 threefry_prng_impl
	Seed json.Number `json:"seed"`
}

// KeyRequest 帶入既有 key 的共同欄位；key 與 b64u 擇一，b64u 已含演算法標記。
type KeyRequest struct {
	Impl string   `json:"impl"`
	Key  []uint32 `json:"key"`
	B64U string   `json:"b64u,omitempty"`
}

type SplitRequest struct {
	KeyRequest
	Count int `json:"count"`
}

type FoldInRequest struct {
	KeyRequest
	Data uint32 `json:"data"`
}

type BitsRequest struct {
	KeyRequest
	Shape []int `json:"shape"`
	Width int   `json:"width"` // 缺省為 32
}

// AuditRequest 以 server 端的預設設定為底，覆寫非零欄位。
type AuditRequest struct {
	Impls   []string `json:"impls,omitempty"`
	Seed    *int64   `json:"seed,omitempty"`
	Workers int      `json:"workers,omitempty"`
	Samples int      `json:"samples,omitempty"`
	Width   int      `json:"width,omitempty"`
	Buckets int      `json:"buckets,omitempty"`
	Alpha   float64  `json:"alpha,omitempty"`
}

// DecodeSeedRequest 支援：
//   - GET：從 query string 讀取 impl / seed。
//   - POST：從 JSON body 反序列化（DisallowUnknownFields）。
func DecodeSeedRequest(r *http.Request) (*SeedRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		return &SeedRequest{Impl: q.Get("impl"), Seed: json.Number(q.Get("seed"))}, nil
	case http.MethodPost:
		return DecodeJSON[SeedRequest](r)
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeJSON 嚴格解析 POST JSON body；body 過大或有未知欄位皆視為參數錯誤。
func DecodeJSON[T any](r *http.Request) (*T, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	req := new(T)
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, errs.Warnf("invalid json: %v", err)
	}
	return req, nil
}

// Parse 解析種子並建立 typed key。
func (sr *SeedRequest) Parse() (core.TypedKey, error) {
	kind, err := kindOf(sr.Impl)
	if err != nil {
		return core.TypedKey{}, err
	}
	s := strings.TrimSpace(sr.Seed.String())
	if s == "" {
		return core.TypedKey{}, errs.Coded(errs.CodeInvalidSetting, "seed is required")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return core.TypedKey{}, errs.Coded(errs.CodeInvalidSetting, "seed %q is not a decimal integer", s)
	}
	key, err := core.SeedBig(kind, n)
	if err != nil {
		return core.TypedKey{}, err
	}
	return core.TypedKey{Impl: kind, Data: key}, nil
}

// Typed 檢查 key shape 並綁定演算法標記。
func (kr *KeyRequest) Typed() (core.TypedKey, error) {
	if kr.B64U != "" {
		if len(kr.Key) != 0 {
			return core.TypedKey{}, errs.Coded(errs.CodeInvalidKeyShape, "key and b64u are mutually exclusive")
		}
		k, err := corefmt.DecodeBase64URL(kr.B64U)
		if err != nil {
			return core.TypedKey{}, err
		}
		if kr.Impl != "" {
			kind, err := core.KindByName(kr.Impl)
			if err != nil {
				return core.TypedKey{}, err
			}
			if kind != k.Impl {
				return core.TypedKey{}, errs.Coded(errs.CodeImplMismatch, "b64u key is %s, request says %s", k.Impl, kind)
			}
		}
		return k, nil
	}
	kind, err := kindOf(kr.Impl)
	if err != nil {
		return core.TypedKey{}, err
	}
	return core.WrapKeyData(kind, kr.Key)
}

// Apply 把覆寫欄位套用到 base 的複本上並重新檢查。
func (ar *AuditRequest) Apply(base *setting.AuditSetting) (*setting.AuditSetting, error) {
	as := *base
	as.Impls = append([]string(nil), base.Impls...)
	if len(ar.Impls) > 0 {
		as.Impls = append([]string(nil), ar.Impls...)
	}
	if ar.Seed != nil {
		as.Seed = *ar.Seed
	}
	if ar.Workers != 0 {
		as.Workers = ar.Workers
	}
	if ar.Samples != 0 {
		as.Samples = ar.Samples
	}
	if ar.Width != 0 {
		as.Width = ar.Width
	}
	if ar.Buckets != 0 {
		as.Buckets = ar.Buckets
	}
	if ar.Alpha != 0 {
		as.Alpha = ar.Alpha
	}
	if err := as.Init(); err != nil {
		return nil, err
	}
	return &as, nil
}

func kindOf(name string) (core.Kind, error) {
	if strings.TrimSpace(name) == "" {
		return core.Threefry, nil
	}
	return core.KindByName(name)
}
