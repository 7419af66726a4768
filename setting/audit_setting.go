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

// Package setting 定義統計稽核（audit）的設定檔與讀取入口。
package setting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
	"gopkg.in/yaml.v3"
)

// AuditSetting 稽核參數
type AuditSetting struct {
	Seed        int64    `yaml:"seed"          json:"seed"`
	Impls       []string `yaml:"impls"         json:"impls"`
	Workers     int      `yaml:"workers"       json:"workers"`
	Samples     int      `yaml:"samples"       json:"samples"`
	Width       int      `yaml:"width"         json:"width"`
	Buckets     int      `yaml:"buckets"       json:"buckets"`
	Alpha       float64  `yaml:"alpha"         json:"alpha"`
	SplitCount  int      `yaml:"split_count"   json:"split_count"`
	SplitDepth  int      `yaml:"split_depth"   json:"split_depth"`
	SplitFanout int      `yaml:"split_fanout"  json:"split_fanout"`
	FoldCount   int      `yaml:"fold_count"    json:"fold_count"`

	kinds []core.Kind
}

// Kinds 回傳解析後的演算法標記，順序與設定檔相同。
func (s *AuditSetting) Kinds() []core.Kind {
	return append([]core.Kind(nil), s.kinds...)
}

// GetAuditSettingByYAML 嚴格解析 YAML（多寫/拼錯欄位即報錯），並執行初始化與檢查。
func GetAuditSettingByYAML(data []byte) (*AuditSetting, error) {
	as := &AuditSetting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(as); err != nil {
		return nil, errs.WrapCoded(err, errs.CodeInvalidSetting, "failed to unmarshall yaml")
	}
	if err := as.Init(); err != nil {
		return nil, errs.Wrap(err, "audit setting initialized err")
	}
	return as, nil
}

// GetAuditSettingByJSON 解析 JSON 並執行初始化與檢查。
func GetAuditSettingByJSON(data []byte) (*AuditSetting, error) {
	as := &AuditSetting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(as); err != nil {
		return nil, errs.WrapCoded(err, errs.CodeInvalidSetting, "can not unmarshall json byte")
	}
	if err := as.Init(); err != nil {
		return nil, errs.Wrap(err, "audit setting initialized err")
	}
	return as, nil
}

// Load 從 fs.FS 讀取設定檔，依副檔名決定解析方式（.yaml/.yml/.json）。
func Load(fsys fs.FS, name string) (*AuditSetting, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errs.Wrap(err, "read audit setting "+name)
	}
	switch ext(name) {
	case ".json":
		return GetAuditSettingByJSON(data)
	case ".yaml", ".yml":
		return GetAuditSettingByYAML(data)
	default:
		return nil, errs.Coded(errs.CodeInvalidSetting, "unsupported setting file %q", name)
	}
}

// Default 回傳內嵌的預設設定。
func Default() *AuditSetting {
	as, err := GetAuditSettingByYAML(defaultYAML)
	if err != nil {
		panic("setting: embedded default is invalid: " + err.Error())
	}
	return as
}

// Init 解析演算法名稱並檢查參數。手動組裝 AuditSetting 後也必須呼叫。
func (s *AuditSetting) Init() error {
	if len(s.Impls) == 0 {
		for _, im := range core.Impls() {
			s.Impls = append(s.Impls, im.Name)
		}
	}
	s.kinds = make([]core.Kind, 0, len(s.Impls))
	for _, name := range s.Impls {
		k, err := core.KindByName(name)
		if err != nil {
			return err
		}
		s.kinds = append(s.kinds, k)
	}
	return s.valid()
}

// valid 執行最基本的設定檢查
func (s *AuditSetting) valid() error {
	bad := func(format string, a ...any) error {
		return errs.Coded(errs.CodeInvalidSetting, "%s", fmt.Sprintf(format, a...))
	}
	if s.Workers < 1 || s.Workers > 1024 {
		return bad("workers must be in [1, 1024], got %d", s.Workers)
	}
	if s.Samples < s.Workers {
		return bad("samples (%d) must be >= workers (%d)", s.Samples, s.Workers)
	}
	if s.Width != 8 && s.Width != 16 && s.Width != 32 && s.Width != 64 {
		return bad("width must be 8, 16, 32 or 64, got %d", s.Width)
	}
	if s.Buckets < 2 || s.Buckets&(s.Buckets-1) != 0 || s.Buckets > 1<<16 {
		return bad("buckets must be a power of two in [2, 65536], got %d", s.Buckets)
	}
	if s.Width < 64 && s.Buckets > 1<<s.Width {
		return bad("buckets (%d) exceed the %d-bit sample space", s.Buckets, s.Width)
	}
	if s.Alpha <= 0 || s.Alpha >= 0.5 {
		return bad("alpha must be in (0, 0.5), got %g", s.Alpha)
	}
	if s.SplitCount < 1 {
		return bad("split_count must be > 0")
	}
	if s.SplitDepth < 1 || s.SplitFanout < 2 {
		return bad("split_depth must be >= 1 and split_fanout >= 2")
	}
	if s.FoldCount < 1 {
		return bad("fold_count must be > 0")
	}
	return nil
}

func ext(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}
