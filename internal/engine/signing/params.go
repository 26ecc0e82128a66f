package signing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// SignKey is the parameter that carries the signature.
const SignKey = "sign"

// Params is one request's full parameter list. Values are stored in the
// exact form they are transmitted, so the signer and the form body always
// see the same string.
type Params map[string]string

func NewParams() Params {
	return make(Params)
}

// Set stores value under key using the gateway's stringification rules:
// bools become "true"/"false", numbers their shortest decimal form, and
// maps, slices and structs compact JSON.
func (p Params) Set(key string, value interface{}) error {
	s, err := Stringify(value)
	if err != nil {
		return fmt.Errorf("param %s: %w", key, err)
	}
	p[key] = s
	return nil
}

// SetIfNotEmpty stores value only when it is a non-empty string.
func (p Params) SetIfNotEmpty(key, value string) {
	if value != "" {
		p[key] = value
	}
}

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Signed returns a copy of p with the sign key set.
func (p Params) Signed(secret string, method Method) Params {
	c := p.Clone()
	c[SignKey] = Sign(p, secret, method)
	return c
}

// Encode returns the params as an application/x-www-form-urlencoded body.
func (p Params) Encode() string {
	return p.Values().Encode()
}

func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for k, s := range p {
		v.Set(k, s)
	}
	return v
}

// Stringify renders a value the way it is sent on the wire.
func Stringify(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case time.Time, *time.Time:
		// Each parameter has its own layout and zone; callers format dates.
		return "", fmt.Errorf("unsupported value type %T: format times explicitly", value)
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
		return compactJSON(value)
	}
	return "", fmt.Errorf("unsupported value type %T", value)
}

func compactJSON(value interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
