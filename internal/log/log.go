package log

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type entry struct {
	TS        string         `json:"ts"`
	Level     string         `json:"level"`
	ReqID     string         `json:"req_id,omitempty"`
	Tenant    string         `json:"tenant,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

type ctxKey int

const (
	tenantKey ctxKey = iota
	reqIDKey
)

// WithTenant returns ctx tagged with the tenant; *Ctx log calls made with it
// carry the tenant field.
func WithTenant(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantKey, id)
}

// TenantFrom returns the tenant tagged on ctx, or "".
func TenantFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(tenantKey).(string)
	return id
}

// WithRequestID returns ctx tagged with the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey, id)
}

func newEntry(level, action string, err error, fields map[string]any) entry {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if err != nil {
		e.Err = err.Error()
	}
	return e
}

func emit(e entry) {
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func write(level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := newEntry(level, action, err, fields)
	if c != nil {
		e.IP = c.IP()
		e.Method = c.Method()
		e.Path = c.Path()
		e.Status = c.Response().StatusCode()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e.ReqID = rid
		}
		if t, ok := c.Locals("tenant").(string); ok && t != "" {
			e.Tenant = t
		}
	}
	emit(e)
}

// writeCtx is write for code below the handlers, which only has a context.
func writeCtx(ctx context.Context, level string, action string, err error, fields map[string]any) {
	e := newEntry(level, action, err, fields)
	if ctx != nil {
		e.Tenant = TenantFrom(ctx)
		e.ReqID, _ = ctx.Value(reqIDKey).(string)
	}
	emit(e)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { write("info", c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write("audit", c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", c, action, nil, fields)
}

// Warn records a degraded-but-handled condition (empty fallback, dropped result).
func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("warn", c, action, err, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", c, action, err, fields)
}

func InfoCtx(ctx context.Context, action string, fields map[string]any) {
	writeCtx(ctx, "info", action, nil, fields)
}
func WarnCtx(ctx context.Context, action string, err error, fields map[string]any) {
	writeCtx(ctx, "warn", action, err, fields)
}
func ErrorCtx(ctx context.Context, action string, err error, fields map[string]any) {
	writeCtx(ctx, "error", action, err, fields)
}
