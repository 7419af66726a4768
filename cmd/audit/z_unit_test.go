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

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/splitkey"
	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
	"github.com/zintix-labs/splitkey/setting"
)

func TestKeysDumpAndVerify(t *testing.T) {
	kinds := []core.Kind{core.Threefry, core.UnsafeRBG}
	a := splitkey.DefaultAuditor(nil)
	var buf bytes.Buffer
	if err := writeKeys(&buf, a, kinds); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := checkKeys(bytes.NewReader(buf.Bytes()), a, kinds); err != nil {
		t.Fatalf("same setting must verify: %v", err)
	}

	other := setting.Default()
	other.Seed = 43
	if err := other.Init(); err != nil {
		t.Fatal(err)
	}
	b, _ := splitkey.NewAuditor(other, nil)
	err := checkKeys(bytes.NewReader(buf.Bytes()), b, kinds)
	if !errors.Is(err, errs.ErrInvalidSetting) || exitCode(err) != 2 {
		t.Fatalf("different seed must fail verification, got %v", err)
	}
	if err := checkKeys(bytes.NewReader(buf.Bytes()), a, kinds[:1]); err == nil {
		t.Fatalf("key count mismatch must fail")
	}

	path := filepath.Join(t.TempDir(), "keys.bin")
	if err := dumpKeys(path, a, kinds); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if err := verifyKeys(path, a, kinds); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestSettingExitCodes(t *testing.T) {
	dir := t.TempDir()
	typo := filepath.Join(dir, "typo.yaml")
	if err := os.WriteFile(typo, []byte("seed: 1\nwokers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	zero := filepath.Join(dir, "zero.yaml")
	src := "seed: 1\nworkers: 0\nsamples: 100\nwidth: 32\nbuckets: 16\nalpha: 0.01\n" +
		"split_count: 10\nsplit_depth: 2\nsplit_fanout: 2\nfold_count: 10\n"
	if err := os.WriteFile(zero, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{typo, zero} {
		cfg := &config{configPath: path, set: map[string]bool{}}
		_, err := cfg.setting()
		if err == nil || exitCode(err) != 2 {
			t.Fatalf("%s: exit code %d, err %v", filepath.Base(path), exitCode(err), err)
		}
	}
	if exitCode(errFailed) != 1 || exitCode(errors.New("io")) != 3 {
		t.Fatalf("unexpected exit code mapping")
	}
}
