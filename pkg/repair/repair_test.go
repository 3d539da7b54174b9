package repair

import (
	"reflect"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid passthrough", `{"a":1,"b":[true,null]}`, `{"a":1,"b":[true,null]}`},
		{"truncated literal", `{"a": tru`, `{"a": true}`},
		{"python none prefix", `{"a": Non`, `{"a": null}`},
		{"truncated array", `{"a": [1, 2, 3`, `{"a": [1, 2, 3]}`},
		{"trailing comma", `[1, 2, 3,]`, `[1, 2, 3]`},
		{"trailing comma object", `{"a": 1,}`, `{"a": 1}`},
		{"unquoted key single quotes", `{name: 'John'}`, `{"name": "John"}`},
		{"ndjson wrap", "{\"a\":1}\n{\"b\":2}", `[{"a":1},{"b":2}]`},
		{"single root never wrapped", `{"a":1}`, `{"a":1}`},
		{"wrapper call", `{"count": NumberLong(123)}`, `{"count": 123}`},
		{"nested wrapper calls", `{"d": ISODate(NumberLong(1))}`, `{"d": 1}`},
		{"wrapper string argument", `{"d": ISODate("2020-01-01")}`, `{"d": "2020-01-01"}`},
		{"string concatenation", `{"t": "a" + "b"}`, `{"t": "ab"}`},
		{"concatenated key", `{"a" "b": 1}`, `{"ab": 1}`},
		{"curly quotes", "{“a”: ‘b’}", `{"a": "b"}`},
		{"unterminated string", `{"a": "hel`, `{"a": "hel"}`},
		{"unterminated key string", `{"na`, `{"na":null}`},
		{"dangling colon", `{"a":`, `{"a":null}`},
		{"dangling key", `{"a"`, `{"a":null}`},
		{"missing value before comma", `{"a":,"b":2}`, `{"a":null,"b":2}`},
		{"numeric unquoted key", `{1: 2}`, `{"1": 2}`},
		{"line comment", "{\"a\":1//note\n}", `{"a":1 }`},
		{"line comment u2028 terminator", "{\"a\":1//note\u2028}", `{"a":1 }`},
		{"line comment u2029 terminator", "{\"a\":1//note\u2029}", `{"a":1 }`},
		{"block comment", `{/*x*/"a":1}`, `{"a":1}`},
		{"unterminated block comment", `{"a":1/*note`, `{"a":1}`},
		{"ellipsis discarded", `[1, 2, ...]`, `[1, 2]`},
		{"ellipsis between array values", `[1, ..., 2]`, `[1, 2]`},
		{"ellipsis between object members", `{"a": 1, ..., "b": 2}`, `{"a": 1, "b": 2}`},
		{"doubled comma", `[1,,2]`, `[1,2]`},
		{"missing comma between values", `[1 2]`, `[1 ,2]`},
		{"synthetic key", `{{"a":1}}`, `{"_":{"a":1}}`},
		{"stray bracket inside object", `{"a":1]}`, `{"a":1}`},
		{"stray brace inside array", `[1}]`, `[1]`},
		{"nbsp whitespace", "{\"a\":\u00a01}", `{"a": 1}`},
		{"empty input", ``, ``},
		{"whitespace only", " \t\n ", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repair(tt.in); got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairOutputIsValidJSON(t *testing.T) {
	inputs := []string{
		`{"a": tru`,
		`{"a": [1, {"b": [2, {"c":`,
		"{'k': 'v', missing: }",
		`[[[[`,
		`{"a": "unterminated`,
		"```json\n{\"fenced\": tru\n```",
		`cb({"jsonp": 1})`,
		"{\"a\":1}\n{\"b\":2}\n{\"c\":3}",
		`{"w": Date(ISODate(5))}`,
		`{"s": "x" + "y" + "z"}`,
		`[1, ..., 2]`,
		`{"a": 1, ..., "b": 2}`,
		"{\"a\":1//c\u2028}",
	}
	for _, in := range inputs {
		out := Repair(in)
		if out == "" {
			t.Errorf("Repair(%q) returned empty output", in)
			continue
		}
		if !json.Valid([]byte(out)) {
			t.Errorf("Repair(%q) = %q, not valid JSON", in, out)
		}
	}
}

func TestRepairIdempotentOnValidJSON(t *testing.T) {
	docs := []string{
		`{"name":"Ada","tags":["a","b"],"n":3.5,"ok":true,"none":null}`,
		`[1,-2,3e4,0.5]`,
		`{"nested":{"deep":[{"x":1},{"y":[null,false]}]}}`,
		`{"esc":"line\nbreak \"quoted\" \\ é"}`,
		`"just a string"`,
		`42`,
		`true`,
	}
	for _, doc := range docs {
		out := Repair(doc)
		var before, after any
		if err := json.Unmarshal([]byte(doc), &before); err != nil {
			t.Fatalf("bad test document %q: %v", doc, err)
		}
		if err := json.Unmarshal([]byte(out), &after); err != nil {
			t.Errorf("Repair(%q) = %q, does not parse: %v", doc, out, err)
			continue
		}
		if !reflect.DeepEqual(before, after) {
			t.Errorf("Repair(%q) = %q, parses differently", doc, out)
		}
	}
}

func TestRepairTotality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"}}}}]]]]",
		"::::::",
		",,,,,,",
		`"""`,
		`\\\\`,
		"((((((",
		"))))))",
		"......",
		"//////",
		"/*/*/*",
		string([]byte{0x00, 0xff, 0xfe, 0x7b, 0xff}),
		strings.Repeat(`{"a":[`, 200),
		strings.Repeat("\"", 99),
	}
	for _, in := range inputs {
		// Must terminate without panicking.
		_ = Repair(in)
	}
}

func TestRepairEvents(t *testing.T) {
	var events []Event
	out := Repair(`{"a": [1, 2`, WithSink(func(e Event) { events = append(events, e) }))
	if out != `{"a": [1, 2]}` {
		t.Fatalf("unexpected output %q", out)
	}
	kinds := make([]Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	want := []Kind{KindClosedArray, KindClosedObject}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("event kinds = %v, want %v (innermost first)", kinds, want)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Pos < events[i-1].Pos {
			t.Errorf("event positions not non-decreasing: %v", events)
		}
	}
}

func TestRepairEventKinds(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{`{name: 1}`, KindInsertedQuote},
		{`{"a": "open`, KindInsertedQuote},
		{`{"a": tru`, KindFixedLiteral},
		{`{"a": None}`, KindFixedLiteral},
		{`{"a": 1`, KindClosedObject},
		{`[1`, KindClosedArray},
		{`[1 2]`, KindMissingComma},
		{"{\"a\":1}\n{\"b\":2}", KindMissingComma},
		{`{{"a":1}}`, KindSyntheticKey},
		{`{"a":}`, KindInsertedValue},
		{`{"a"}`, KindInsertedValue},
	}
	for _, tt := range tests {
		seen := map[Kind]bool{}
		Repair(tt.in, WithSink(func(e Event) { seen[e.Kind] = true }))
		if !seen[tt.kind] {
			t.Errorf("Repair(%q) did not emit %s", tt.in, tt.kind)
		}
	}
}

func TestRepairCustomWrappers(t *testing.T) {
	out := Repair(`{"a": Decimal(2.5)}`, WithWrappers("Decimal"))
	if out != `{"a": 2.5}` {
		t.Errorf("custom wrapper: got %q", out)
	}
	// Unknown call names pass through untouched.
	out = Repair(`{"a": Decimal(2.5)}`)
	if strings.Contains(out, "2.5") && !strings.Contains(out, "Decimal") {
		t.Errorf("unregistered wrapper was unwrapped: %q", out)
	}
}

func TestRepairWithoutPreprocess(t *testing.T) {
	fenced := "```json\n{\"a\": 1}\n```"
	if out := Repair(fenced); out != `{"a": 1}` {
		t.Errorf("preprocessed: got %q", out)
	}
	// With preprocessing off the fence ticks hit the automaton's fallback.
	out := Repair(fenced, WithoutPreprocess())
	if out == `{"a": 1}` {
		t.Errorf("WithoutPreprocess still stripped the fence: %q", out)
	}
}
