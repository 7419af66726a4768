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
	"bufio"
	"io"
	"os"
	"os/exec"
	"strings"
)

// lineFilter 回傳 false 表示略過該行
type lineFilter func(line string) bool

func runTest(args []string) error {
	PrintGreen("running tests")
	if err := cleanCache(); err != nil {
		return err
	}
	// 只印 ok / FAIL 與編譯錯誤，不然過濾太乾淨會看不出為什麼沒反應
	return stream(goCmd(append([]string{"test", "./...", "-cover", "-count=1"}, args...)...), func(line string) bool {
		return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
			strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
	})
}

func runTestAll(args []string) error {
	PrintGreen("running tests (all with coverage)")
	if err := cleanCache(); err != nil {
		return err
	}
	return attach(goCmd(append([]string{"test", "./...", "-cover"}, args...)...))
}

func runTestDetail(args []string) error {
	PrintGreen("running tests (detail)")
	if err := cleanCache(); err != nil {
		return err
	}
	return stream(goCmd(append([]string{"test", "./...", "-v", "-count=1"}, args...)...), func(line string) bool {
		return !strings.Contains(line, "[no test files]")
	})
}

func runBench(args []string) error {
	PrintGreen("running benchmarks")
	return attach(goCmd(append([]string{"test", "-run", "^$", "-bench", ".", "-benchmem", "./sdk/..."}, args...)...))
}

func runAudit(args []string) error {
	return attach(goCmd(append([]string{"run", "./cmd/audit"}, args...)...))
}

// runPGO 以 cmd/audit 的 CPU profile 產生 cmd/audit/default.pgo
func runPGO(args []string) error {
	PrintGreen("profiling cmd/audit for pgo")
	if err := runAudit(append([]string{"-p", "cpu", "-no-bar", "-format", "json"}, args...)); err != nil {
		return err
	}
	src, err := os.Open("build/profiling/cpu.pprof")
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create("cmd/audit/default.pgo")
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

func goCmd(args ...string) *exec.Cmd {
	return exec.Command("go", args...)
}

func cleanCache() error {
	if err := attach(goCmd("clean", "-testcache")); err != nil {
		PrintRed("go clean -testcache failed: " + err.Error())
		return err
	}
	return nil
}

func attach(cmd *exec.Cmd) error {
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// stream 合併 stdout/stderr（同 2>&1），逐行過濾後依 ok/FAIL 上色。
func stream(cmd *exec.Cmd, keep lineFilter) error {
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		line := sc.Text()
		if !keep(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		default:
			PrintDefault(line)
		}
	}
	if err := sc.Err(); err != nil {
		PrintRed("scanner error: " + err.Error())
	}
	return cmd.Wait()
}
