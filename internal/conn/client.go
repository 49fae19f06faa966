package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/tobsdb/tdbprop/internal/record"
	"github.com/tobsdb/tdbprop/pkg"
)

var ErrNotConnected = errors.New("Not connected")

type ClientOptions struct {
	// defaults to websocket.DefaultDialer
	Dialer *ws.Dialer
	Header http.Header
}

// Client talks to a record server over a single websocket connection and
// implements record.Store. Requests are serialized on the connection.
type Client struct {
	// The formatted connection url of the server
	Url     *url.URL
	options ClientOptions

	mu     sync.Mutex
	conn   *ws.Conn
	req_id int64
}

var _ record.Store = (*Client)(nil)

func NewClient(urlStr string, dbName string, options ClientOptions) (*Client, error) {
	Url, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}
	if Url.Scheme != "ws" && Url.Scheme != "wss" {
		return nil, fmt.Errorf("Invalid url scheme: %q", Url.Scheme)
	}
	if dbName == "" {
		return nil, errors.New("No database specified")
	}

	q := Url.Query()
	q.Set("db", dbName)
	Url.RawQuery = q.Encode()

	if options.Dialer == nil {
		options.Dialer = ws.DefaultDialer
	}
	return &Client{Url: Url, options: options}, nil
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connect(ctx)
}

func (c *Client) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, res, err := c.options.Dialer.DialContext(ctx, c.Url.String(), c.options.Header)
	if err != nil {
		return err
	}
	if err := res.Header.Get("tdb-error"); err != "" {
		conn.Close()
		return fmt.Errorf("TDB Error: %s", err)
	}

	pkg.InfoLog("Connected to TDB Server", c.Url.Host)
	c.conn = conn
	return nil
}

func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	defer func() { c.conn = nil }()

	err := c.conn.WriteMessage(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, "Disconnect"))
	if err != nil {
		pkg.ErrorLog(err.Error())
		c.conn.Close()
		return err
	}
	if err := c.conn.Close(); err != nil {
		pkg.ErrorLog(err.Error())
		return err
	}

	pkg.InfoLog("Disconnected from TDB Server")
	return nil
}

func (c *Client) query(
	ctx context.Context, action RequestAction, table string,
	data map[string]any, where map[string]any,
) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return Response{}, err
	}
	if c.conn == nil {
		return Response{}, ErrNotConnected
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		c.conn.SetReadDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
		defer c.conn.SetReadDeadline(time.Time{})
	}

	c.req_id++
	err := c.conn.WriteJSON(Request{
		Action: action,
		Table:  table,
		Data:   data,
		Where:  where,
		ReqId:  c.req_id,
	})
	if err != nil {
		return Response{}, c.broken(err)
	}

	_, r, err := c.conn.NextReader()
	if err != nil {
		return Response{}, c.broken(err)
	}
	var res Response
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&res); err != nil {
		return res, c.broken(err)
	}
	if res.ReqId != c.req_id {
		return res, c.broken(fmt.Errorf("response id %d does not match request id %d", res.ReqId, c.req_id))
	}
	return res, nil
}

// broken drops a connection whose stream can no longer be trusted. The next
// request redials.
func (c *Client) broken(err error) error {
	pkg.ErrorLog("conn error:", err)
	c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) Create(ctx context.Context, table string, data map[string]any) (Response, error) {
	return c.query(ctx, RequestActionCreate, table, data, nil)
}

func (c *Client) FindUnique(ctx context.Context, table string, where map[string]any) (Response, error) {
	return c.query(ctx, RequestActionFind, table, nil, where)
}

func (c *Client) UpdateUnique(ctx context.Context, table string, where map[string]any, data map[string]any) (Response, error) {
	return c.query(ctx, RequestActionUpdate, table, data, where)
}

func (c *Client) DeleteUnique(ctx context.Context, table string, where map[string]any) (Response, error) {
	return c.query(ctx, RequestActionDelete, table, nil, where)
}

// Save creates the row when id is empty or unknown to the server, and
// replaces it otherwise.
func (c *Client) Save(ctx context.Context, table, id string, data map[string]any) (string, error) {
	if id != "" {
		res, err := c.UpdateUnique(ctx, table, map[string]any{IdKey: id}, data)
		if err != nil {
			return "", err
		}
		if res.Status != http.StatusNotFound {
			return id, res.Err()
		}
		data = withId(id, data)
	}

	res, err := c.Create(ctx, table, data)
	if err != nil {
		return "", err
	}
	if err := res.Err(); err != nil {
		return "", err
	}
	row, ok := res.Data.(map[string]any)
	if !ok {
		return "", fmt.Errorf("unexpected create response data %T", res.Data)
	}
	new_id, ok := row[IdKey].(string)
	if !ok {
		return "", errors.New("create response has no id")
	}
	return new_id, nil
}

func (c *Client) Load(ctx context.Context, table, id string) (map[string]any, error) {
	res, err := c.FindUnique(ctx, table, map[string]any{IdKey: id})
	if err != nil {
		return nil, err
	}
	if res.Status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s/%s", record.ErrNotFound, table, id)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	row, ok := res.Data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected find response data %T", res.Data)
	}
	return withoutId(row), nil
}
