package replicate

import (
	"encoding/json"
	"testing"
)

func TestResolveOutputURLPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		matched bool
	}{
		{"direct url string", `"https://x/y.png"`, "https://x/y.png", true},
		{"http url string", `"http://x/y.png"`, "http://x/y.png", true},
		{"array first element", `["https://x/y.png", "extra"]`, "https://x/y.png", true},
		{"object url field", `{"url": "https://x/y.png"}`, "https://x/y.png", true},
		{"object output array", `{"output": ["https://x/y.png"]}`, "https://x/y.png", true},
		{"object output string", `{"output": "https://x/y.png"}`, "https://x/y.png", true},
		{"unmatched object", `{"foo": 1}`, "", false},
		{"non-url string", `"not a url"`, "", false},
		{"number", `42`, "", false},
		{"null", `null`, "", false},
		{"empty array", `[]`, "", false},
		{"array of numbers", `[1, 2]`, "", false},
		{"output array of numbers", `{"output": [7]}`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveOutputURL(json.RawMessage(tc.raw))
			if ok != tc.matched {
				t.Fatalf("matched = %v, want %v", ok, tc.matched)
			}
			if got != tc.want {
				t.Fatalf("url = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveOutputURLURLFieldBeatsOutputField(t *testing.T) {
	raw := json.RawMessage(`{"url": "https://x/url.png", "output": ["https://x/output.png"]}`)
	got, ok := ResolveOutputURL(raw)
	if !ok || got != "https://x/url.png" {
		t.Fatalf("got %q (%v), want url field to win", got, ok)
	}
}

func TestResolveOutputURLEmpty(t *testing.T) {
	if _, ok := ResolveOutputURL(nil); ok {
		t.Fatalf("expected no match for empty output")
	}
}

func TestDescribeOutput(t *testing.T) {
	kind, keys := DescribeOutput(json.RawMessage(`{"b": 1, "a": 2}`))
	if kind != "object" {
		t.Fatalf("kind = %q, want object", kind)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys = %v, want sorted [a b]", keys)
	}

	if kind, _ := DescribeOutput(json.RawMessage(`[1]`)); kind != "array" {
		t.Fatalf("kind = %q, want array", kind)
	}
	if kind, _ := DescribeOutput(json.RawMessage(`"s"`)); kind != "string" {
		t.Fatalf("kind = %q, want string", kind)
	}
	if kind, _ := DescribeOutput(nil); kind != "absent" {
		t.Fatalf("kind = %q, want absent", kind)
	}
	if kind, _ := DescribeOutput(json.RawMessage(`{oops`)); kind != "malformed" {
		t.Fatalf("kind = %q, want malformed", kind)
	}
}
