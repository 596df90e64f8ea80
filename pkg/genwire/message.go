package genwire

import (
	"fmt"
	"strconv"
)

// Wire message field names. An object with a method field is a call (a
// request when it also carries an id, a notification otherwise); an object
// with a result field and an id is a response.
const (
	fieldID      = "id"
	fieldMethod  = "method"
	fieldParams  = "params"
	fieldResult  = "result"
	fieldError   = "error"
	fieldCode    = "code"
	fieldMessage = "message"
)

// JSON-RPC error codes sent on calls that carried an id.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// idKey normalizes a wire id for pending-table lookup. Outbound ids are
// serialized as strings, but a peer may echo them back as JSON numbers.
func idKey(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10)
		}

		return strconv.FormatFloat(id, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// paramsArray shapes variadic call arguments as the wire params array.
func paramsArray(args []any) []any {
	if args == nil {
		return []any{}
	}

	return args
}
