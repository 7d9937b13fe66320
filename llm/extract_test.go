package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare array",
			in:   `[{"title":"a"}]`,
			want: `[{"title":"a"}]`,
			ok:   true,
		},
		{
			name: "array inside wrapper object",
			in:   `{"tasks": [{"title":"a"},{"title":"b"}]}`,
			want: `[{"title":"a"},{"title":"b"}]`,
			ok:   true,
		},
		{
			name: "markdown fenced with prose",
			in:   "Here are your tasks:\n```json\n[{\"title\":\"clean\"}]\n```\nEnjoy!",
			want: `[{"title":"clean"}]`,
			ok:   true,
		},
		{
			name: "bracket inside string literal ignored",
			in:   `{"note":"not [this]","items":[{"title":"x [v2]"}]}`,
			want: `[{"title":"x [v2]"}]`,
			ok:   true,
		},
		{
			name: "nested arrays return outermost",
			in:   `[["a"],["b"]]`,
			want: `[["a"],["b"]]`,
			ok:   true,
		},
		{
			name: "unterminated array",
			in:   `[{"title":"a"}`,
			ok:   false,
		},
		{
			name: "no array at all",
			in:   "sorry, I cannot help with that",
			ok:   false,
		},
		{
			name: "empty input",
			in:   "",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONArray(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			var sink []any
			if err := json.Unmarshal([]byte(got), &sink); err != nil {
				t.Errorf("extracted substring is not valid JSON: %v", err)
			}
		})
	}
}
