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

// ops 是取代 Makefile 的開發腳本：go run ./scripts [task]
package main

import (
	"fmt"
	"os"
	"sort"
)

// task 描述一個腳本任務
type task struct {
	desc string
	run  func(args []string) error
}

var tasks = map[string]task{
	"test":        {"go test ./... -cover -count=1, only ok/FAIL lines", runTest},
	"test-all":    {"go test ./... -cover", runTestAll},
	"test-detail": {"go test ./... -v -count=1 without [no test files]", runTestDetail},
	"bench":       {"go test -run ^$ -bench . ./sdk/...", runBench},
	"audit":       {"go run ./cmd/audit [flags]", runAudit},
	"pgo":         {"profile the audit runner and copy cpu.pprof to default.pgo", runPGO},
}

func main() {
	// 如果沒有送任何參數進來，我們告訴用戶需要帶上 task
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	name := os.Args[1]
	t, ok := tasks[name]
	if !ok {
		PrintYellow(fmt.Sprintf("Unknown task: %s", name))
		usage()
		os.Exit(1)
	}
	if err := t.run(os.Args[2:]); err != nil {
		PrintRed(fmt.Sprintf("%s finished with errors: %v", name, err))
		os.Exit(1)
	}
}

func usage() {
	PrintDefault("Usage: go run ./scripts [task] [args...]")
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		PrintBlue(fmt.Sprintf("  %-12s %s", n, tasks[n].desc))
	}
}
