package conn

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tobsdb/tdbprop/pkg"
)

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is an in-memory record server speaking the client protocol. Each
// connection picks its database with the `db` query parameter.
type Server struct {
	mu  sync.Mutex
	dbs pkg.Map[string, *database]
}

func NewServer() *Server {
	return &Server{dbs: pkg.Map[string, *database]{}}
}

func (s *Server) database(name string) *database {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dbs.Has(name) {
		s.dbs.Set(name, newDatabase())
	}
	return s.dbs.Get(name)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	db_name := r.URL.Query().Get("db")
	if db_name == "" {
		ConnError(w, r, "No database specified")
		return
	}

	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}
	pkg.InfoLog("New connection from", conn.RemoteAddr(), "using database", db_name)
	handleConnection(s.database(db_name), conn)
}

func handleConnection(db *database, conn *websocket.Conn) {
	defer conn.Close()
	defer pkg.InfoLog("Connection closed from", conn.RemoteAddr())
	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("conn read error", err)
			}
			return
		}

		var req Request
		var res Response
		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			pkg.ErrorLog("parsing request", err)
			res = NewErrorResponse(http.StatusBadRequest, err.Error())
		} else {
			res = db.handle(req)
			res.ReqId = req.ReqId
		}

		if err := conn.WriteJSON(res); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}

func ConnError(w http.ResponseWriter, r *http.Request, conn_error string) {
	pkg.InfoLog("connection error:", conn_error)
	headers := http.Header{}
	headers.Set("tdb-error", conn_error)
	conn, err := Upgrader.Upgrade(w, r, headers)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseUnsupportedData, conn_error))
	conn.Close()
}
