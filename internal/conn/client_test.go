package conn_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/tobsdb/tdbprop/internal/conn"
	"github.com/tobsdb/tdbprop/internal/property"
	"github.com/tobsdb/tdbprop/internal/record"
	"github.com/tobsdb/tdbprop/internal/types"
	"github.com/tobsdb/tdbprop/internal/typesystem"
	"github.com/tobsdb/tdbprop/pkg"
	"gotest.tools/assert"
)

func init() { pkg.SetLogLevel(pkg.LogLevelNone) }

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(NewServer())
	t.Cleanup(srv.Close)

	c, err := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), "conn_test", ClientOptions{})
	assert.NilError(t, err)
	t.Cleanup(func() { c.Disconnect() })
	return c
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("ws://localhost:7085", "go_client_test", ClientOptions{})
	assert.NilError(t, err)
	assert.Assert(t, strings.HasPrefix(c.Url.String(), "ws://localhost:7085"))
	assert.Assert(t, strings.Contains(c.Url.String(), "db=go_client_test"))

	_, err = NewClient("http://localhost:7085", "a", ClientOptions{})
	assert.ErrorContains(t, err, "Invalid url scheme")

	_, err = NewClient("ws://localhost:7085", "", ClientOptions{})
	assert.ErrorContains(t, err, "No database specified")
}

func TestConnect(t *testing.T) {
	c := newTestClient(t)
	assert.NilError(t, c.Connect(testCtx(t)))
	// connecting twice is a no-op
	assert.NilError(t, c.Connect(testCtx(t)))
	assert.NilError(t, c.Disconnect())
	assert.NilError(t, c.Disconnect())
}

func TestConnectWithoutDB(t *testing.T) {
	srv := httptest.NewServer(NewServer())
	defer srv.Close()

	c, err := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), "x", ClientOptions{})
	assert.NilError(t, err)
	q := c.Url.Query()
	q.Del("db")
	c.Url.RawQuery = q.Encode()

	err = c.Connect(testCtx(t))
	assert.ErrorContains(t, err, "TDB Error: No database specified")
}

func TestCreateFindUpdateDelete(t *testing.T) {
	c := newTestClient(t)
	ctx := testCtx(t)

	res, err := c.Create(ctx, "example", map[string]any{"vector": []int{1, 2, 3}})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusCreated)
	row := res.Data.(map[string]any)
	id := row[IdKey].(string)
	assert.Assert(t, id != "")
	assert.DeepEqual(t, row["vector"], []any{json.Number("1"), json.Number("2"), json.Number("3")})

	res, err = c.FindUnique(ctx, "example", map[string]any{IdKey: id})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusOK)

	res, err = c.UpdateUnique(ctx, "example", map[string]any{IdKey: id}, map[string]any{"name": "Hello world"})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusOK)
	assert.Equal(t, res.Data.(map[string]any)["name"], "Hello world")
	_, has_vector := res.Data.(map[string]any)["vector"]
	assert.Assert(t, !has_vector)

	res, err = c.DeleteUnique(ctx, "example", map[string]any{IdKey: id})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusOK)

	res, err = c.FindUnique(ctx, "example", map[string]any{IdKey: id})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusNotFound)
	assert.ErrorContains(t, res.Err(), "TDB Error(404)")
}

func TestBadRequests(t *testing.T) {
	c := newTestClient(t)
	ctx := testCtx(t)

	res, err := c.FindUnique(ctx, "example", map[string]any{"name": "a"})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusBadRequest)

	res, err = c.Create(ctx, "example", nil)
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusBadRequest)

	res, err = c.Create(ctx, "", map[string]any{})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusBadRequest)

	res, err = c.Create(ctx, "example", map[string]any{IdKey: "fixed"})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusCreated)
	res, err = c.Create(ctx, "example", map[string]any{IdKey: "fixed"})
	assert.NilError(t, err)
	assert.Equal(t, res.Status, http.StatusConflict)
}

func TestStoreSaveLoad(t *testing.T) {
	c := newTestClient(t)
	ctx := testCtx(t)

	id, err := c.Save(ctx, "user", "", map[string]any{"name": "a"})
	assert.NilError(t, err)

	same, err := c.Save(ctx, "user", id, map[string]any{"name": "b"})
	assert.NilError(t, err)
	assert.Equal(t, same, id)

	data, err := c.Load(ctx, "user", id)
	assert.NilError(t, err)
	assert.DeepEqual(t, data, map[string]any{"name": "b"})

	// unknown ids are created as given
	_, err = c.Save(ctx, "user", "chosen", map[string]any{"name": "c"})
	assert.NilError(t, err)
	data, err = c.Load(ctx, "user", "chosen")
	assert.NilError(t, err)
	assert.Equal(t, data["name"], "c")

	_, err = c.Load(ctx, "user", "missing")
	assert.Assert(t, errors.Is(err, record.ErrNotFound))
}

func TestRecordRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := testCtx(t)
	ts := typesystem.NewJSON()

	m, err := record.NewModel("user",
		property.MustNew("name", types.DatatypeText, property.Nullable(false)),
		property.MustNew("age", types.DatatypeInteger),
		property.MustNew("karma", types.DatatypeLargeInteger),
	)
	assert.NilError(t, err)

	r := m.New()
	assert.NilError(t, r.Set("name", "tobs"))
	assert.NilError(t, r.Coerce("age", "9007199254740993"))
	assert.NilError(t, r.Coerce("karma", "123456789012345678901234567890"))
	assert.NilError(t, r.Save(ctx, c, ts))
	assert.Assert(t, r.ID != "")

	loaded, err := m.Load(ctx, c, ts, r.ID)
	assert.NilError(t, err)
	age, _ := loaded.Get("age")
	assert.Equal(t, age, int64(9007199254740993))
	karma, _ := loaded.Get("karma")
	want, _ := r.Get("karma")
	assert.Equal(t, karma.(*big.Int).Cmp(want.(*big.Int)), 0)
}
