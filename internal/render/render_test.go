// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	rn, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if rn.errorPage == nil {
		t.Fatal("error page template not parsed")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		data       ErrorData
		wantStatus int
		want       []string
		notWant    []string
	}{
		{
			name:       "defaults to 500",
			data:       ErrorData{},
			wantStatus: http.StatusInternalServerError,
			want:       []string{"<title>Internal Server Error</title>", `<p class="code">500</p>`},
			notWant:    []string{"Reference:"},
		},
		{
			name:       "custom title and message",
			data:       ErrorData{Status: http.StatusServiceUnavailable, Title: "Store unavailable", Message: "The store theme has no layout wrapper.", RequestID: "req-7"},
			wantStatus: http.StatusServiceUnavailable,
			want:       []string{"<h1>Store unavailable</h1>", "no layout wrapper", "Reference: req-7"},
		},
		{
			name:       "escapes message",
			data:       ErrorData{Message: `<script>alert(1)</script>`},
			wantStatus: http.StatusInternalServerError,
			want:       []string{"&lt;script&gt;"},
			notWant:    []string{"<script>"},
		},
	}

	rn := MustNew()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			rn.Error(rr, tt.data)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
				t.Errorf("content-type: got %q", ct)
			}
			body := rr.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(body, s) {
					t.Errorf("body should not contain %q", s)
				}
			}
		})
	}
}
