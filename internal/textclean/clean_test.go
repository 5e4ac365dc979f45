package textclean

import "testing"

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "tags and double spaces", input: "<b>Hi</b>  there", want: "hi there"},
		{name: "tags become separators", input: "one<br/>two<p>three</p>", want: "one two three"},
		{name: "newlines and tabs collapse", input: "  Summary\n\n\tDuties \r\n", want: "summary duties"},
		{name: "attributes inside tags", input: `<a href="https://x.test">Apply</a> NOW`, want: "apply now"},
		{name: "unclosed bracket survives", input: "salary < 100k", want: "salary < 100k"},
		{name: "nested brackets", input: "<<a>b>", want: "b>"},
		{name: "whitespace only", input: " \n\t ", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanText(tc.input)
			if got != tc.want {
				t.Errorf("CleanText(%q)\n got  %q\n want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"<b>Hi</b>  there",
		"<<a>b>",
		"We use RPA and LLM heavily, no offshoring here",
		"a <b c> d < e",
		"ÜBER <i>Straße</i> Team",
		"<div>\n  <ul><li>Write code</li><li>Review PRs</li></ul>\n</div>",
	}
	for _, in := range inputs {
		once := CleanText(in)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanPtr_Nil(t *testing.T) {
	if got := CleanPtr(nil); got != "" {
		t.Errorf("CleanPtr(nil) = %q, want empty", got)
	}
	s := "<p>Go</p>"
	if got := CleanPtr(&s); got != "go" {
		t.Errorf("CleanPtr(%q) = %q, want go", s, got)
	}
}
