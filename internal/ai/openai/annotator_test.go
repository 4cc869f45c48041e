package openai

import "testing"

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"entities": []}`, `{"entities": []}`},
		{"```json\n{\"entities\": []}\n```", `{"entities": []}`},
		{"```\n{\"entities\": []}\n```", `{"entities": []}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
