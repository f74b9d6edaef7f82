package hostclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/awa-soul/internal/httpc"
	"github.com/teslashibe/awa-soul/pkg/points"
	"github.com/teslashibe/awa-soul/pkg/protocol"
	"github.com/teslashibe/awa-soul/pkg/soul"
)

// Result is the bridge's answer to a REST command.
type Result struct {
	Status string `json:"status"` // "applied" or "pending"
	State  string `json:"state"`
}

// Client calls the bridge REST API.
type Client struct {
	base string
	http *http.Client
}

// New creates a REST client for the server root at base.
func New(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: httpc.NewClient(timeout),
	}
}

// Status fetches the engine status.
func (c *Client) Status(ctx context.Context) (soul.Status, error) {
	var st soul.Status
	err := httpc.GetJSON(ctx, c.http, c.base+"/api/state", &st)
	return st, err
}

// Command applies cmd. Rejections come back as *httpc.StatusError with
// code 400 (malformed) or 422 (unknown state).
func (c *Client) Command(ctx context.Context, cmd protocol.Command) (Result, error) {
	var res Result
	err := httpc.PostJSON(ctx, c.http, c.base+"/api/command", cmd, &res)
	return res, err
}

// Targets lists registered target names.
func (c *Client) Targets(ctx context.Context) ([]string, error) {
	var out struct {
		Targets []string `json:"targets"`
	}
	err := httpc.GetJSON(ctx, c.http, c.base+"/api/targets", &out)
	return out.Targets, err
}

// Snapshot fetches the current point cloud as JSON.
func (c *Client) Snapshot(ctx context.Context) (*points.Snapshot, error) {
	var s points.Snapshot
	if err := httpc.GetJSON(ctx, c.http, c.base+"/api/snapshot", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Stats fetches bridge and tick statistics, undecoded.
func (c *Client) Stats(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := httpc.GetJSON(ctx, c.http, c.base+"/api/stats", &raw)
	return raw, err
}
