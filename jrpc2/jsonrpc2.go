// Package jrpc2 is a JSON-RPC 2.0 client for daemons that take positional
// parameters over a plain TCP stream.
package jrpc2

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const specVersion = "2.0"

const ParseError = -32700
const InvalidRequest = -32600
const MethodNotFound = -32601
const InvalidParams = -32602
const InternalErr = -32603

// ids for JSON-RPC v2 can be a string, an integer or null. We keep the
// original type so responses can be matched no matter how the server
// echoes them.
type Id struct {
	intVal int64
	strVal string
}

func (id Id) MarshalJSON() ([]byte, error) {
	if id.strVal != "" {
		return json.Marshal(id.strVal)
	}
	return json.Marshal(id.intVal)
}

func (id *Id) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%d: no data provided", ParseError)
	}
	switch rune(data[0]) {
	case '"':
		if data[len(data)-1] != '"' {
			return fmt.Errorf("%d: parse error", ParseError)
		}
		id.strVal = string(data[1 : len(data)-1])
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		val, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("%d: invalid id value: %s", InvalidRequest, string(data))
		}
		id.intVal = val
		return nil
	default:
		return fmt.Errorf("%d: invalid id value: %s", InvalidRequest, string(data))
	}
}

func (id *Id) Val() string {
	return id.String()
}

func (id Id) String() string {
	if id.strVal != "" {
		return id.strVal
	}
	return strconv.FormatInt(id.intVal, 10)
}

func NewId(val string) *Id {
	return &Id{strVal: val}
}

func NewIdAsInt(val int64) *Id {
	return &Id{intVal: val}
}

type Request struct {
	Id     *Id    `json:"id,omitempty"`
	Method Method `json:"-"`
}

// Method is a request. Exported fields are sent as positional parameters
// in declaration order; zero fields tagged omitempty are left out.
type Method interface {
	Name() string
}

// RawResponse is what the client gets back from an RPC call. The result
// stays raw until the caller maps it into its own type.
type RawResponse struct {
	Id    *Id             `json:"id"`
	Raw   json.RawMessage `json:"-"`
	Error *RpcError       `json:"error,omitempty"`
}

type RpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

func (r *Request) MarshalJSON() ([]byte, error) {
	type Alias Request
	return json.Marshal(&struct {
		Version string        `json:"jsonrpc"`
		Name    string        `json:"method"`
		Params  []interface{} `json:"params"`
		*Alias
	}{
		Alias:   (*Alias)(r),
		Params:  GetParams(r.Method),
		Version: specVersion,
		Name:    r.Method.Name(),
	})
}

func (r *RawResponse) UnmarshalJSON(data []byte) error {
	type Alias RawResponse
	raw := &struct {
		Version string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	r.Raw = raw.Result

	if len(r.Raw) == 0 && r.Error == nil {
		return errors.New("Must send either a result or an error in a response")
	}
	return nil
}

// GetParams returns the exported fields of target in order.
func GetParams(target Method) []interface{} {
	params := make([]interface{}, 0)
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return params
	}
	typeOf := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fType := typeOf.Field(i)
		if !field.CanInterface() {
			continue
		}
		tag, _ := fType.Tag.Lookup("json")
		if omit := parseTag(tag); omit && field.IsZero() {
			continue
		}
		params = append(params, field.Interface())
	}
	return params
}

func parseTag(tag string) (omitempty bool) {
	if tag == "" || tag == "-" {
		return false
	}
	for _, field := range strings.Split(tag, ",")[1:] {
		if field == "omitempty" {
			return true
		}
	}
	return false
}
