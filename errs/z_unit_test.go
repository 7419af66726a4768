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
	"strings"
	"testing"
)

func TestCodedLevel(t *testing.T) {
	if e := Coded(CodeInvalidCount, "count=%d", -1); e.ErrLv != Warn {
		t.Fatalf("expected warn, got %s", ErrLv(e.ErrLv))
	}
	if e := Coded(CodeCounterOverflow, "too large"); e.ErrLv != Fatal {
		t.Fatalf("expected fatal, got %s", ErrLv(e.ErrLv))
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := Coded(CodeInvalidKeyShape, "want 2 words, got 3")
	if !errors.Is(err, ErrInvalidKeyShape) {
		t.Fatalf("expected errors.Is to match key shape sentinel")
	}
	if errors.Is(err, ErrImplMismatch) {
		t.Fatalf("unexpected match with impl mismatch sentinel")
	}
	wrapped := fmt.Errorf("outer: %w", Wrap(err, "split"))
	if !errors.Is(wrapped, ErrInvalidKeyShape) {
		t.Fatalf("expected wrapped error to keep its code")
	}
	if !IsInvalidArgument(wrapped) {
		t.Fatalf("expected invalid argument")
	}
}

func TestWrapForeignCauseIsFatal(t *testing.T) {
	e := Wrap(errors.New("io"), "read setting")
	if e.ErrLv != Fatal || e.Code != CodeNone {
		t.Fatalf("unexpected level/code: %s %s", ErrLv(e.ErrLv), e.Code)
	}
	if IsInvalidArgument(e) {
		t.Fatalf("foreign cause must not be invalid argument")
	}
}

func TestErrorString(t *testing.T) {
	e := WrapWithExtra(Coded(CodeInvalidWidth, "width=12"), "random bits", "impl=threefry")
	s := e.Error()
	for _, want := range []string{"errlv=warn", "code=invalid_width", "extra: impl=threefry", "cause:"} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in %q", want, s)
		}
	}
}

func TestWrapCodedKeepsCause(t *testing.T) {
	cause := errors.New("yaml: field sampels not found")
	err := WrapCoded(cause, CodeInvalidSetting, "failed to unmarshall yaml")
	if err.ErrLv != Warn || !errors.Is(err, ErrInvalidSetting) || !IsInvalidArgument(err) {
		t.Fatalf("expected warn invalid setting, got %v", err)
	}
	if !errors.Is(err, cause) || !strings.Contains(err.Error(), "sampels") {
		t.Fatalf("cause lost: %v", err)
	}
}
