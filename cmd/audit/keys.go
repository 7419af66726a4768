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
	"io"
	"os"

	"github.com/zintix-labs/splitkey"
	"github.com/zintix-labs/splitkey/corefmt"
	"github.com/zintix-labs/splitkey/errs"
	"github.com/zintix-labs/splitkey/sdk/core"
)

// derivedKeys 依 kinds 順序串接每個演算法的 root / stream / check key。
func derivedKeys(a *splitkey.Auditor, kinds []core.Kind) ([]core.TypedKey, error) {
	out := make([]core.TypedKey, 0, 3*len(kinds))
	for _, kind := range kinds {
		keys, err := a.Keys(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
	}
	return out, nil
}

// writeKeys 以 corefmt frame 寫出本次稽核使用的 key，供其他機器以 -verify-keys 比對。
func writeKeys(w io.Writer, a *splitkey.Auditor, kinds []core.Kind) error {
	keys, err := derivedKeys(a, kinds)
	if err != nil {
		return err
	}
	return corefmt.WriteKeys(w, keys...)
}

// checkKeys 讀回 frame 並與目前設定衍生的 key 逐把比對。
func checkKeys(r io.Reader, a *splitkey.Auditor, kinds []core.Kind) error {
	want, err := derivedKeys(a, kinds)
	if err != nil {
		return err
	}
	got, err := corefmt.ReadKeys(r)
	if err != nil {
		return err
	}
	if len(got) != len(want) {
		return errs.Coded(errs.CodeInvalidSetting, "key file has %d keys, setting derives %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			return errs.Coded(errs.CodeInvalidSetting, "key %d differs: file %s, derived %s",
				i, corefmt.EncodeHex(got[i]), corefmt.EncodeHex(want[i]))
		}
	}
	return nil
}

func dumpKeys(path string, a *splitkey.Auditor, kinds []core.Kind) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create key file")
	}
	if err := writeKeys(f, a, kinds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(err, "close key file")
	}
	return nil
}

func verifyKeys(path string, a *splitkey.Auditor, kinds []core.Kind) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(err, "open key file")
	}
	defer f.Close()
	return checkKeys(f, a, kinds)
}
