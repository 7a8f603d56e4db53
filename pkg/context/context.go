// Package context carries request and run metadata through context.Context
package context

import "context"

type key int

const (
	requestKey key = iota
	runIDKey
)

// Request describes the API call a context belongs to
type Request struct {
	ID       string
	Method   string
	Route    string
	RemoteIP string
}

func WithRequest(ctx context.Context, r Request) context.Context {
	return context.WithValue(ctx, requestKey, r)
}

// RequestFrom returns the request stored on ctx, or the zero Request
func RequestFrom(ctx context.Context) Request {
	r, _ := ctx.Value(requestKey).(Request)
	return r
}

func RequestID(ctx context.Context) string {
	return RequestFrom(ctx).ID
}

// WithRunID tags ctx with the pipeline run it belongs to
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// Fields returns the metadata on ctx as log fields, omitting empty values
func Fields(ctx context.Context) map[string]any {
	r := RequestFrom(ctx)
	fields := make(map[string]any, 5)
	for k, v := range map[string]string{
		"request_id": r.ID,
		"method":     r.Method,
		"route":      r.Route,
		"remote_ip":  r.RemoteIP,
		"run_id":     RunID(ctx),
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
