package problemgen

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ParseKind
		want string
	}{
		{"strict", `{"statement":"x","answer":"A"}`, ParseOK, `{"statement":"x","answer":"A"}`},
		{"strict with whitespace", "\n  {\"a\":1}\n", ParseOK, `{"a":1}`},
		{"prose around object", `Aqui está a questão: {"a":1} Bons estudos!`, ParseRecovered, `{"a":1}`},
		{"code fence", "```json\n{\"a\":{\"b\":2}}\n```", ParseRecovered, `{"a":{"b":2}}`},
		{"braces inside strings", `Resposta: {"s":"use } and { freely","t":"\"}"}`, ParseRecovered, `{"s":"use } and { freely","t":"\"}"}`},
		{"first object wins", `{"a":1} {"b":2}`, ParseRecovered, `{"a":1}`},
		{"no braces", "desculpe, não consigo", ParseMalformed, ""},
		{"unbalanced", `{"a": {"b": 1}`, ParseMalformed, ""},
		{"array is not an object", `[1,2,3]`, ParseMalformed, ""},
		{"invalid inside braces", `{a: 1}`, ParseMalformed, ""},
		{"empty", "", ParseMalformed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.OK() != (tt.kind != ParseMalformed) {
				t.Errorf("OK() = %v", got.OK())
			}
			if got.Raw != tt.text {
				t.Errorf("Raw = %q, want original text", got.Raw)
			}
			if tt.want != "" && string(got.Object) != tt.want {
				t.Errorf("Object = %s, want %s", got.Object, tt.want)
			}
			if got.OK() && !json.Valid(got.Object) {
				t.Errorf("Object is not valid JSON: %s", got.Object)
			}
		})
	}
}

func TestParseKind_String(t *testing.T) {
	if ParseOK.String() != "ok" || ParseRecovered.String() != "recovered" || ParseMalformed.String() != "malformed" {
		t.Error("unexpected ParseKind names")
	}
}
