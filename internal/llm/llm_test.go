package llm

import "testing"

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"title": "x"}`, `{"title": "x"}`},
		{"json fence", "```json\n{\"title\": \"x\"}\n```", `{"title": "x"}`},
		{"bare fence", "```\nplain text\n```", "plain text"},
		{"surrounding whitespace", "  ```json\n{}\n```  ", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
