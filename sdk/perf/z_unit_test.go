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

package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/splitkey/errs"
)

func TestRunPProfModes(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"heap", "allocs"} {
		ran := false
		if err := RunPProf(func() error { ran = true; return nil }, mode, dir); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !ran {
			t.Fatalf("%s: exe not called", mode)
		}
		if st, err := os.Stat(filepath.Join(dir, mode+".pprof")); err != nil || st.Size() == 0 {
			t.Fatalf("%s: profile missing: %v", mode, err)
		}
	}
}

func TestRunPProfPassesError(t *testing.T) {
	boom := errors.New("boom")
	if err := RunPProf(func() error { return boom }, "", t.TempDir()); !errors.Is(err, boom) {
		t.Fatalf("expected exe error, got %v", err)
	}
	if err := RunPProf(func() error { return nil }, "trace", t.TempDir()); !errors.Is(err, errs.ErrInvalidSetting) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
}
