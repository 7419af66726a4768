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

package stats

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/zintix-labs/splitkey/errs"
	"gopkg.in/yaml.v3"
)

// ReportRender 定義輸出行為
type ReportRender interface {
	Write(w io.Writer, r *Report) error
}

// Json渲染
type JsonReportRender struct{}

func (jr *JsonReportRender) Write(w io.Writer, r *Report) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLReportRender struct{}

func (yr *YAMLReportRender) Write(w io.Writer, r *Report) error {
	// 只有「最內層的一維陣列」才輸出成 flow style：[..., ...]
	return forceReadableList(w, r)
}

// TableReportRender 表格渲染（終端機用）
type TableReportRender struct{}

func (tr *TableReportRender) Write(w io.Writer, r *Report) error {
	r.Fprint(w)
	return nil
}

// RenderByName 依名稱取得渲染器：json / yaml / table。
func RenderByName(name string) (ReportRender, error) {
	switch strings.ToLower(name) {
	case "json":
		return &JsonReportRender{}, nil
	case "yaml", "yml":
		return &YAMLReportRender{}, nil
	case "", "table":
		return &TableReportRender{}, nil
	default:
		return nil, errs.Coded(errs.CodeInvalidSetting, "unknown output format %q", name)
	}
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}

	// 自頂向下調整所有 sequence node 的 style：
	// - 若該 sequence 內部「沒有子 sequence / mapping」，代表它是最內層的一維 => 用 flow style: [...]
	// - 否則保持預設 block（展開）
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		return

	case yaml.SequenceNode:
		nested := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				nested = true
				break
			}
		}
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		if !nested {
			n.Style = yaml.FlowStyle
		}
		return

	default:
		// Scalar / Alias 等不處理
		return
	}
}
