package exercise

import "testing"

func TestParseExpectation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		nil  bool
		want Expectation
	}{
		{name: "empty", raw: "", nil: true},
		{name: "malformed", raw: "{equals:", nil: true},
		{name: "not an object", raw: `"hello"`, nil: true},
		{name: "null", raw: "null", nil: true},
		{name: "array", raw: `["a"]`, nil: true},
		{name: "equals", raw: `{"equals":"42"}`, want: Expectation{Equals: strp("42")}},
		{name: "number", raw: `{"equals":42}`, want: Expectation{Equals: strp("42")}},
		{name: "float", raw: `{"contains":2.5}`, want: Expectation{Contains: strp("2.5")}},
		{name: "bool", raw: `{"contains":true}`, want: Expectation{Contains: strp("true")}},
		{name: "json null", raw: `{"equals":null}`, want: Expectation{Equals: strp("null")}},
		{name: "list", raw: `{"contains":[1,"b",null]}`, want: Expectation{Contains: strp("1,b,")}},
		{name: "object", raw: `{"equals":{"a":1}}`, want: Expectation{Equals: strp("[object Object]")}},
		{name: "all", raw: `{"equals":"a","contains":"b","regex":"c"}`,
			want: Expectation{Equals: strp("a"), Contains: strp("b"), Regex: strp("c")}},
		{name: "unknown keys", raw: `{"startsWith":"x"}`, want: Expectation{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseExpectation(tc.raw)
			if tc.nil {
				if got != nil {
					t.Fatalf("ParseExpectation(%q) = %+v, want nil", tc.raw, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseExpectation(%q) = nil", tc.raw)
			}
			if deref(got.Equals) != deref(tc.want.Equals) ||
				deref(got.Contains) != deref(tc.want.Contains) ||
				deref(got.Regex) != deref(tc.want.Regex) {
				t.Errorf("ParseExpectation(%q) = %s, want %s", tc.raw, show(got), show(&tc.want))
			}
			if (got.Equals == nil) != (tc.want.Equals == nil) ||
				(got.Contains == nil) != (tc.want.Contains == nil) ||
				(got.Regex == nil) != (tc.want.Regex == nil) {
				t.Errorf("ParseExpectation(%q) presence = %s, want %s", tc.raw, show(got), show(&tc.want))
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		output string
		want   bool
	}{
		{"no expectation", "", "anything", true},
		{"empty object", "{}", "anything", true},
		{"equals trims both sides", `{"equals":" 42 "}`, "42\n", true},
		{"equals mismatch", `{"equals":"42"}`, "43", false},
		{"contains", `{"contains":"ell"}`, "hello", true},
		{"contains is untrimmed", `{"contains":"lo "}`, "hello", false},
		{"contains empty", `{"contains":""}`, "x", true},
		{"regex", `{"regex":"^\\d+$"}`, "12345", true},
		{"regex mismatch", `{"regex":"^\\d+$"}`, "12a", false},
		{"regex lookahead", `{"regex":"foo(?=bar)"}`, "foobar", true},
		{"invalid regex", `{"regex":"(("}`, "((", false},
		{"equals wins over contains", `{"equals":"a","contains":"hello"}`, "hello", false},
		{"contains wins over regex", `{"contains":"zz","regex":"h"}`, "hello", false},
		{"finished message", `{"contains":"Execution finished"}`, FinishedMessage, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseExpectation(tc.raw).Matches(tc.output); got != tc.want {
				t.Errorf("Matches(%q) with %s = %v, want %v", tc.output, tc.raw, got, tc.want)
			}
		})
	}
}

func strp(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func show(e *Expectation) string {
	f := func(s *string) string {
		if s == nil {
			return "<nil>"
		}
		return "\"" + *s + "\""
	}
	return "{equals:" + f(e.Equals) + " contains:" + f(e.Contains) + " regex:" + f(e.Regex) + "}"
}
