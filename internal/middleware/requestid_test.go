// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/vrcxtracker/internal/logging"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generates new id", incoming: ""},
		{name: "preserves existing id", incoming: "upstream-123", wantSame: true},
		{name: "replaces oversized id", incoming: strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctxID, correlation string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				correlation = logging.CorrelationID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.wantSame {
				if got != tt.incoming {
					t.Errorf("header = %q, want %q", got, tt.incoming)
				}
			} else if _, err := uuid.Parse(got); err != nil {
				t.Errorf("header %q is not a uuid: %v", got, err)
			}
			if ctxID != got {
				t.Errorf("context id = %q, header = %q", ctxID, got)
			}
			if correlation != got {
				t.Errorf("correlation id = %q, want %q", correlation, got)
			}
		})
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
