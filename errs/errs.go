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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
//
//   - Warn：呼叫端參數錯誤（invalid argument），修正參數即可重試。
//   - Fatal：設定層級的致命錯誤（例如 counter 空間耗盡），不可重試。
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Code 描述錯誤的類別，供 errors.Is 比對。
type Code uint8

const (
	CodeNone Code = iota
	CodeInvalidKeyShape
	CodeImplMismatch
	CodeUnknownImpl
	CodeInvalidCount
	CodeInvalidShape
	CodeInvalidWidth
	CodeInvalidSetting
	CodeCounterOverflow
)

var codeMap = map[Code]string{
	CodeNone:            "",
	CodeInvalidKeyShape: "invalid_key_shape",
	CodeImplMismatch:    "impl_mismatch",
	CodeUnknownImpl:     "unknown_impl",
	CodeInvalidCount:    "invalid_count",
	CodeInvalidShape:    "invalid_shape",
	CodeInvalidWidth:    "invalid_width",
	CodeInvalidSetting:  "invalid_setting",
	CodeCounterOverflow: "counter_overflow",
}

func (c Code) String() string {
	if str, ok := codeMap[c]; ok {
		return str
	}
	return ""
}

// 哨兵錯誤：只用於 errors.Is 比對 Code，不要直接回傳。
var (
	ErrInvalidKeyShape = &E{Code: CodeInvalidKeyShape, ErrLv: Warn}
	ErrImplMismatch    = &E{Code: CodeImplMismatch, ErrLv: Warn}
	ErrUnknownImpl     = &E{Code: CodeUnknownImpl, ErrLv: Warn}
	ErrInvalidCount    = &E{Code: CodeInvalidCount, ErrLv: Warn}
	ErrInvalidShape    = &E{Code: CodeInvalidShape, ErrLv: Warn}
	ErrInvalidWidth    = &E{Code: CodeInvalidWidth, ErrLv: Warn}
	ErrInvalidSetting  = &E{Code: CodeInvalidSetting, ErrLv: Warn}
	ErrCounterOverflow = &E{Code: CodeCounterOverflow, ErrLv: Fatal}
)

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Code 表示錯誤類別。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Code    Code
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Code != CodeNone {
		base = fmt.Sprintf("errlv=%s code=%s %s", ErrLv(e.ErrLv), e.Code, e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 以 Code 比對：target 為帶 Code 的 *E 時，Code 相同即視為同一類錯誤。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok || t.Code == CodeNone {
		return false
	}
	return e.Code == t.Code
}

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// Coded 建立帶 Code 的錯誤，ErrLv 依 Code 決定：
// CodeCounterOverflow 為 Fatal，其餘皆為呼叫端參數錯誤（Warn）。
func Coded(code Code, format string, a ...any) *E {
	lv := Warn
	if code == CodeCounterOverflow {
		lv = Fatal
	}
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: lv, Code: code}
}

// WrapCoded 以指定 Code 包裝底層錯誤；ErrLv 依 Code 決定（規則同 Coded）。
// 用於把標準庫或三方依賴的解析錯誤歸類為呼叫端參數錯誤，同時保留 cause。
func WrapCoded(cause error, code Code, msg string) *E {
	r := Coded(code, "%s", msg)
	r.Cause = cause
	return r
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Code（保持原本嚴重度）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	code := CodeNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		code = e.Code
	}
	r := New(errLv, msg)
	r.Code = code
	r.Cause = cause
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，規則同 Wrap。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// IsInvalidArgument 回報 err 是否屬於呼叫端參數錯誤（Warn 等級）。
func IsInvalidArgument(err error) bool {
	e, ok := AsErr(err)
	return ok && e.ErrLv == Warn
}
