package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start processing.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Bleep.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Bleep.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Bleep.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Enqueue submits video URLs for processing.
func (c *Client) Enqueue(urls []string) (*EnqueueResponse, error) {
	var resp EnqueueResponse
	req := EnqueueRequest{URLs: urls}
	if err := c.client.Call("Bleep.Enqueue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueList returns queue items optionally filtered by statuses.
func (c *Client) QueueList(statuses []string) (*QueueListResponse, error) {
	var resp QueueListResponse
	req := QueueListRequest{Statuses: statuses}
	if err := c.client.Call("Bleep.QueueList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueDescribe returns details for a single queue item.
func (c *Client) QueueDescribe(id int64) (*QueueDescribeResponse, error) {
	var resp QueueDescribeResponse
	req := QueueDescribeRequest{ID: id}
	if err := c.client.Call("Bleep.QueueDescribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueClear removes pending items from the queue.
func (c *Client) QueueClear() (*QueueClearResponse, error) {
	var resp QueueClearResponse
	if err := c.client.Call("Bleep.QueueClear", QueueClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueueHealth returns queue diagnostics.
func (c *Client) QueueHealth() (*QueueHealthResponse, error) {
	var resp QueueHealthResponse
	if err := c.client.Call("Bleep.QueueHealth", QueueHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Bleep.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Processed returns the most recent completed videos.
func (c *Client) Processed(limit int) (*ProcessedListResponse, error) {
	var resp ProcessedListResponse
	req := ProcessedListRequest{Limit: limit}
	if err := c.client.Call("Bleep.Processed", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProcessedClear forgets completion history.
func (c *Client) ProcessedClear() (*ProcessedClearResponse, error) {
	var resp ProcessedClearResponse
	if err := c.client.Call("Bleep.ProcessedClear", ProcessedClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BanlistList fetches the active ban term set.
func (c *Client) BanlistList() (*BanlistListResponse, error) {
	var resp BanlistListResponse
	if err := c.client.Call("Bleep.BanlistList", BanlistListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BanlistAdd stores a new ban term.
func (c *Client) BanlistAdd(term string) (*BanlistAddResponse, error) {
	var resp BanlistAddResponse
	req := BanlistAddRequest{Term: term}
	if err := c.client.Call("Bleep.BanlistAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BanlistRemove deletes a stored ban term.
func (c *Client) BanlistRemove(term string) (*BanlistRemoveResponse, error) {
	var resp BanlistRemoveResponse
	req := BanlistRemoveRequest{Term: term}
	if err := c.client.Call("Bleep.BanlistRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScheduleGet fetches the stored mute schedule for a video.
func (c *Client) ScheduleGet(videoID string) (*ScheduleGetResponse, error) {
	var resp ScheduleGetResponse
	req := ScheduleGetRequest{VideoID: videoID}
	if err := c.client.Call("Bleep.ScheduleGet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionSet points the mute coordinator at a video URL.
func (c *Client) SessionSet(url string) (*SessionSetResponse, error) {
	var resp SessionSetResponse
	req := SessionSetRequest{URL: url}
	if err := c.client.Call("Bleep.SessionSet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Position reports playback progress.
func (c *Client) Position(position float64, playing bool) (*PositionResponse, error) {
	var resp PositionResponse
	req := PositionRequest{Position: position, Playing: playing}
	if err := c.client.Call("Bleep.Position", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Caption feeds observed caption text through the daemon matcher.
func (c *Client) Caption(text string) (*CaptionObserveResponse, error) {
	var resp CaptionObserveResponse
	req := CaptionRequest{Text: text}
	if err := c.client.Call("Bleep.Caption", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MuteToggle flips the mute state manually.
func (c *Client) MuteToggle() (*MuteToggleResponse, error) {
	var resp MuteToggleResponse
	if err := c.client.Call("Bleep.MuteToggle", MuteToggleRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MuteState fetches the current mute decision.
func (c *Client) MuteState() (*MuteStateResponse, error) {
	var resp MuteStateResponse
	if err := c.client.Call("Bleep.MuteState", MuteStateRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Bleep.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Bleep.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
