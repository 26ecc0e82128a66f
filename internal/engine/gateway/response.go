package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// Response is a decoded gateway reply. Remote-defined fields, including
// error_response, are left for the caller to interpret.
type Response map[string]interface{}

// Lookup walks nested objects by key.
func (r Response) Lookup(path ...string) (interface{}, bool) {
	var cur interface{} = map[string]interface{}(r)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path rendered as text.
func (r Response) String(path ...string) string {
	v, ok := r.Lookup(path...)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Response:
		return m, true
	}
	return nil, false
}

func decode(format Format, body []byte) (Response, error) {
	switch format {
	case FormatXML:
		return decodeXML(body)
	default:
		return decodeJSON(body)
	}
}

func decodeJSON(body []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out Response
	if err := dec.Decode(&out); err != nil {
		return nil, &DecodeError{Format: FormatJSON, Err: err}
	}
	if out == nil {
		return nil, &DecodeError{Format: FormatJSON, Err: errors.New("body is not an object")}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Format: FormatJSON, Err: errors.New("trailing data after object")}
	}
	return out, nil
}

// decodeXML maps the document onto the shape of the JSON reply: the root
// element becomes the single top-level key, elements with children become
// objects, repeated siblings become arrays and leaves become their text.
func decodeXML(body []byte) (Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, &DecodeError{Format: FormatXML, Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &DecodeError{Format: FormatXML, Err: errors.New("document has no root element")}
	}
	return Response{root.Tag: elementValue(root)}, nil
}

func elementValue(el *etree.Element) interface{} {
	children := el.ChildElements()
	if len(children) == 0 {
		return el.Text()
	}

	out := make(map[string]interface{}, len(children))
	for _, child := range children {
		v := elementValue(child)
		switch existing := out[child.Tag].(type) {
		case nil:
			out[child.Tag] = v
		case []interface{}:
			out[child.Tag] = append(existing, v)
		default:
			out[child.Tag] = []interface{}{existing, v}
		}
	}
	return out
}
