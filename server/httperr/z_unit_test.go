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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/splitkey/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.Coded(errs.CodeInvalidWidth, "width 12"), http.StatusBadRequest},
		{errs.Wrap(errs.Coded(errs.CodeInvalidCount, "n<0"), "split"), http.StatusBadRequest},
		{errs.Coded(errs.CodeCounterOverflow, "too many"), http.StatusInternalServerError},
		{fmt.Errorf("audit: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{context.Canceled, http.StatusRequestTimeout},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("StatusCode(%v) = %d want %d", c.err, got, c.want)
		}
	}
}

func TestErrsBody(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, httptest.NewRequest(http.MethodPost, "/v1/bits", nil), errs.Coded(errs.CodeInvalidShape, "negative dimension"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var b Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Code != "invalid_shape" || b.Level != "warn" || b.Status != 400 {
		t.Fatalf("unexpected body: %+v", b)
	}
}
