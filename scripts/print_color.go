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
	"fmt"

	"github.com/fatih/color"
)

// 顏色輸出；NO_COLOR 與非 tty 時 fatih/color 會自動停用顏色。
var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
)

func PrintDefault(msg string) { fmt.Println(msg) }
func PrintRed(msg string)     { fmt.Println(red(msg)) }
func PrintGreen(msg string)   { fmt.Println(green(msg)) }
func PrintYellow(msg string)  { fmt.Println(yellow(msg)) }
func PrintBlue(msg string)    { fmt.Println(blue(msg)) }
