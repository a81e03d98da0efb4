package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) []entry {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	defer func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldFlags)
	}()

	fn()

	var out []entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			out = append(out, e)
		}
	}
	return out
}

func TestWriteWithoutRequest(t *testing.T) {
	entries := capture(t, func() {
		Warn(nil, "catalog.fetch.fail", errors.New("boom"), map[string]any{"tenant": "acme"})
	})
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "warn" || e.Action != "catalog.fetch.fail" || e.Err != "boom" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Path != "" || e.ReqID != "" {
		t.Fatalf("request fields should be empty without ctx: %+v", e)
	}
}

func TestWriteCtxCarriesTenant(t *testing.T) {
	ctx := WithRequestID(WithTenant(context.Background(), "acme"), "rid-1")
	entries := capture(t, func() {
		WarnCtx(ctx, "cart.persist.fail", errors.New("full"), map[string]any{"key": "cart-storage:s1"})
		InfoCtx(context.Background(), "session.sweep", nil)
	})
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if e := entries[0]; e.Tenant != "acme" || e.ReqID != "rid-1" || e.Err != "full" || e.Level != "warn" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e := entries[1]; e.Tenant != "" {
		t.Fatalf("untagged ctx should have no tenant: %+v", e)
	}
}
