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
	"errors"
	"fmt"
	"os"

	"github.com/zintix-labs/splitkey/sdk/perf"
)

// splitkey 統計稽核 runner
//
//	go run ./cmd/audit -impl rbg,unsafe_rbg -samples 4000000 -workers 8
//	go run ./cmd/audit -config ./audit.yaml -format yaml
//	go run ./cmd/audit -p cpu
func main() {
	cfg := bindVar()
	if err := perf.RunPProf(cfg.execute, cfg.pprofmode, ""); err != nil {
		cfg.log.Error("audit failed", "err", err)
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}
