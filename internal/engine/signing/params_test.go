package signing

import (
	"net/url"
	"testing"
	"time"
)

type flag string

func TestStringify(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "abc", "abc"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 50, "50"},
		{"int64", int64(-7), "-7"},
		{"uint", uint(3), "3"},
		{"float", 1.5, "1.5"},
		{"float whole", 2.0, "2"},
		{"named string", flag("on"), "on"},
		{"map", map[string]string{"code": "1234"}, `{"code":"1234"}`},
		{"map sorted", map[string]string{"b": "2", "a": "1"}, `{"a":"1","b":"2"}`},
		{"no html escaping", map[string]string{"url": "a<b>&c"}, `{"url":"a<b>&c"}`},
		{"slice", []string{"x", "y"}, `["x","y"]`},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Stringify(tt.value)
			if err != nil {
				t.Fatalf("Stringify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Stringify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringify_Unsupported(t *testing.T) {
	at := time.Date(2016, 4, 22, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))

	tests := []struct {
		name  string
		value interface{}
	}{
		{"channel", make(chan int)},
		// Time has a String method, but its output is no gateway layout.
		{"time", at},
		{"time pointer", &at},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Stringify(tt.value)
			if err == nil {
				t.Errorf("Stringify() = %q, expected error", got)
			}
		})
	}

	p := NewParams()
	if err := p.Set("end_date", at); err == nil {
		t.Error("Set() accepted a time.Time")
	}
	if _, ok := p["end_date"]; ok {
		t.Error("Set() stored a rejected value")
	}
}

func TestParams_SetAndEncode(t *testing.T) {
	p := NewParams()
	for k, v := range map[string]interface{}{"need_record": false, "enable_other_call": true, "page_size": 50} {
		if err := p.Set(k, v); err != nil {
			t.Fatalf("Set(%s) error = %v", k, err)
		}
	}
	p.SetIfNotEmpty("extend", "")
	p.SetIfNotEmpty("biz_id", "123^456")

	if _, ok := p["extend"]; ok {
		t.Error("Expected empty extend to be skipped")
	}

	body, err := url.ParseQuery(p.Encode())
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	want := map[string]string{
		"need_record":       "false",
		"enable_other_call": "true",
		"page_size":         "50",
		"biz_id":            "123^456",
	}
	for k, v := range want {
		if got := body.Get(k); got != v {
			t.Errorf("%s got %q want %q", k, got, v)
		}
	}

	if raw := RawString(p); raw != "biz_id123^456enable_other_calltrueneed_recordfalsepage_size50" {
		t.Errorf("RawString() = %v", raw)
	}
}
