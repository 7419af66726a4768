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

package svrcfg

import (
	"testing"

	"github.com/zintix-labs/splitkey/setting"
)

func TestValidDefaults(t *testing.T) {
	sc := &SvrCfg{Audit: setting.Default()}
	sc.Audit.Samples = 1000
	if err := sc.Valid(); err != nil {
		t.Fatalf("valid: %v", err)
	}
	if sc.Log == nil || sc.MaxBits != DefaultMaxBits || sc.MaxSplit != DefaultMaxSplit || sc.AuditTimeout != DefaultAuditTimeout {
		t.Fatalf("defaults not applied: %+v", sc)
	}
}

func TestValidClampAndLimit(t *testing.T) {
	sc := &SvrCfg{MaxBits: -5, MaxSplit: 1 << 30, MaxAuditSamples: 10}
	if err := sc.Valid(); err == nil {
		t.Fatalf("default audit samples should exceed the limit of 10")
	}
	if sc.MaxBits != 1 || sc.MaxSplit != 1<<20 {
		t.Fatalf("clamp failed: bits=%d split=%d", sc.MaxBits, sc.MaxSplit)
	}
}
