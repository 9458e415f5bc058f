// Package marshal converts between the host Request/Response structs and
// guest JS objects by hand, field by field. The shape is small and fixed
// (six fields on the request, three on the response), so a reflection-based
// or code-generated marshaller would add indirection without buying anything.
package marshal

import (
	"fmt"
	"reflect"

	"github.com/dop251/goja"
	"github.com/edgerun/edgerun/apperrors"
)

// minStatus and maxStatus bound the accepted handler response status: 99
// and 600 are MarshalErrors, 100 and 599 are accepted.
const (
	minStatus = 100
	maxStatus = 599
)

// Request is the host-side record passed into a guest handler.
type Request struct {
	Method  string
	URL     string
	Query   map[string]string
	Params  map[string]string
	Headers map[string]string
	Body    *string
}

// Response is the host-side record decoded back out of a guest handler's
// return value.
type Response struct {
	Status  int
	Headers map[string]string
	Body    *string
}

// ToGuest builds the plain JS object a handler receives as its single
// argument.
func ToGuest(rt *goja.Runtime, req *Request) *goja.Object {
	obj := rt.NewObject()
	obj.Set("method", req.Method)
	obj.Set("url", req.URL)
	obj.Set("query", stringMapToGuest(rt, req.Query))
	obj.Set("params", stringMapToGuest(rt, req.Params))
	obj.Set("headers", stringMapToGuest(rt, req.Headers))
	if req.Body != nil {
		obj.Set("body", *req.Body)
	} else {
		obj.Set("body", goja.Null())
	}
	return obj
}

func stringMapToGuest(rt *goja.Runtime, m map[string]string) *goja.Object {
	obj := rt.NewObject()
	for k, v := range m {
		obj.Set(k, v)
	}
	return obj
}

// FromGuest decodes a handler's returned value into a host Response. The
// value must be an object with a numeric status field; headers and body
// are optional.
func FromGuest(rt *goja.Runtime, value goja.Value) (*Response, error) {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, apperrors.Marshal("handler returned no response")
	}

	obj := value.ToObject(rt)
	if obj == nil {
		return nil, apperrors.Marshal("handler response is not an object")
	}

	statusVal := obj.Get("status")
	if statusVal == nil || goja.IsUndefined(statusVal) {
		return nil, apperrors.Marshal("handler response is missing \"status\"")
	}
	status := int(statusVal.ToInteger())
	if status < minStatus || status > maxStatus {
		return nil, apperrors.Marshal(fmt.Sprintf("handler response status %d out of range [%d,%d]", status, minStatus, maxStatus))
	}

	resp := &Response{Status: status, Headers: map[string]string{}}

	if headersVal := obj.Get("headers"); headersVal != nil && !goja.IsUndefined(headersVal) && !goja.IsNull(headersVal) {
		headersObj := headersVal.ToObject(rt)
		if headersObj == nil {
			return nil, apperrors.Marshal("handler response \"headers\" is not an object")
		}
		for _, key := range headersObj.Keys() {
			v := headersObj.Get(key)
			if v == nil || goja.IsUndefined(v) || goja.IsNull(v) || v.ExportType().Kind() != reflect.String {
				return nil, apperrors.Marshal(fmt.Sprintf("handler response header %q is not a string", key))
			}
			resp.Headers[key] = v.String()
		}
	}

	if bodyVal := obj.Get("body"); bodyVal != nil && !goja.IsUndefined(bodyVal) && !goja.IsNull(bodyVal) {
		body := bodyVal.String()
		resp.Body = &body
	}

	return resp, nil
}
