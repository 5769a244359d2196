package conn

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kvsql/kvsql/internal/query"
	"github.com/kvsql/kvsql/internal/sql"
	"github.com/kvsql/kvsql/internal/storage"
	"github.com/pkg/errors"
)

type WsRequest struct {
	Query string `json:"query"`
	ReqId int    `json:"__kvsql_client_req_id__"` // used in kvsql clients
}

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__kvsql_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

// QueryReqHandler runs one SQL statement end to end: parse, execute,
// wrap the result. It is the whole server surface, minus the socket.
func QueryReqHandler(exec *query.Executor, raw []byte) Response {
	var req WsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	stmt, err := sql.Parse(req.Query)
	if err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	res, err := exec.Execute(stmt)
	if err != nil {
		return NewErrorResponse(statusFromError(err), err.Error())
	}

	switch s := stmt.(type) {
	case *sql.CreateTableStatement:
		return NewResponse(http.StatusCreated, fmt.Sprintf("Created table %s", s.Name), res)
	case *sql.InsertStatement:
		return NewResponse(http.StatusCreated, fmt.Sprintf("Created new row in table %s", s.Table), res)
	default:
		return NewResponse(http.StatusOK, fmt.Sprintf("Found %d rows", len(res.Rows)), res)
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, storage.ERR_TABLE_NOT_FOUND), errors.Is(err, storage.ERR_COLUMN_NOT_FOUND):
		return http.StatusNotFound
	case errors.Is(err, storage.ERR_TABLE_EXISTS):
		return http.StatusConflict
	case errors.Is(err, storage.ERR_CORRUPT_TABLE_RECORD), errors.Is(err, storage.ERR_CORRUPT_ROW_RECORD):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
