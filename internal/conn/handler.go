package conn

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/tobsdb/tdbprop/pkg"
)

// IdKey is the row key the server uses for record ids. Models stored over
// websocket must not declare a property with this name.
const IdKey = "id"

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int64 `json:"__tdb_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

// Err turns a failed response into an error.
func (res Response) Err() error {
	if res.Status < http.StatusBadRequest {
		return nil
	}
	return &ResponseError{Status: res.Status, Message: res.Message}
}

type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("TDB Error(%d): %s", e.Status, e.Message)
}

type Request struct {
	Action RequestAction  `json:"action"`
	Table  string         `json:"table"`
	Data   map[string]any `json:"data"`
	Where  map[string]any `json:"where"`
	ReqId  int64          `json:"__tdb_client_req_id__"`
}

type table = *pkg.InsertSortMap[string, map[string]any]

// database holds rows per table in insertion order.
type database struct {
	locker sync.RWMutex
	tables pkg.Map[string, table]
}

func newDatabase() *database {
	return &database{tables: pkg.Map[string, table]{}}
}

func (db *database) GetLocker() *sync.RWMutex { return &db.locker }

func whereId(where map[string]any) (string, bool) {
	id, ok := where[IdKey].(string)
	return id, ok && id != ""
}

func withId(id string, row map[string]any) map[string]any {
	out := make(map[string]any, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	out[IdKey] = id
	return out
}

func withoutId(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if k != IdKey {
			out[k] = v
		}
	}
	return out
}

func (db *database) handle(req Request) Response {
	if !req.Action.IsValid() {
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("Invalid action: %s", req.Action))
	}
	if req.Table == "" {
		return NewErrorResponse(http.StatusBadRequest, "No table specified")
	}

	if req.Action.IsReadOnly() {
		return pkg.RLockWrap(db, func() Response { return db.find(req) })
	}
	return pkg.LockWrap(db, func() Response {
		switch req.Action {
		case RequestActionCreate:
			return db.create(req)
		case RequestActionUpdate:
			return db.update(req)
		default:
			return db.delete(req)
		}
	})
}

func (db *database) create(req Request) Response {
	if req.Data == nil {
		return NewErrorResponse(http.StatusBadRequest, "No data provided")
	}
	if !db.tables.Has(req.Table) {
		db.tables.Set(req.Table, pkg.NewInsertSortMap[string, map[string]any]())
	}
	t := db.tables.Get(req.Table)

	id, ok := req.Data[IdKey].(string)
	if !ok || id == "" {
		id = uuid.NewString()
	}
	if t.Has(id) {
		return NewErrorResponse(http.StatusConflict, fmt.Sprintf("Row with id %s already exists", id))
	}
	row := withoutId(req.Data)
	t.Push(id, row)
	return NewResponse(http.StatusCreated,
		fmt.Sprintf("Created new row in table %s", req.Table),
		withId(id, row))
}

func (db *database) lookup(req Request) (table, string, *Response) {
	id, ok := whereId(req.Where)
	if !ok {
		res := NewErrorResponse(http.StatusBadRequest, "Where constraint needs an id")
		return nil, "", &res
	}
	t := db.tables.Get(req.Table)
	if t == nil || !t.Has(id) {
		res := NewErrorResponse(http.StatusNotFound, "No row found with constraint")
		return nil, "", &res
	}
	return t, id, nil
}

func (db *database) find(req Request) Response {
	t, id, errRes := db.lookup(req)
	if errRes != nil {
		return *errRes
	}
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Found row with id %s in table %s", id, req.Table),
		withId(id, t.Get(id)))
}

// update replaces the row's fields with the request data.
func (db *database) update(req Request) Response {
	t, id, errRes := db.lookup(req)
	if errRes != nil {
		return *errRes
	}
	if req.Data == nil {
		return NewErrorResponse(http.StatusBadRequest, "No data provided")
	}
	row := withoutId(req.Data)
	t.Set(id, row)
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Updated row with id %s in table %s", id, req.Table),
		withId(id, row))
}

func (db *database) delete(req Request) Response {
	t, id, errRes := db.lookup(req)
	if errRes != nil {
		return *errRes
	}
	row := t.Get(id)
	t.Delete(id)
	return NewResponse(http.StatusOK,
		fmt.Sprintf("Deleted row with id %s in table %s", id, req.Table),
		withId(id, row))
}
