package exercise

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// regexTimeout bounds a single expectation match so a pathological pattern
// cannot hang a check.
const regexTimeout = time.Second

// Expectation is the optional output check attached to an inline checker.
// A nil field means the rule is absent.
type Expectation struct {
	Equals   *string
	Contains *string
	Regex    *string
}

// ParseExpectation decodes a data-expected attribute. It returns nil, meaning
// "no check", for an empty or malformed value or anything that is not a JSON
// object. Non-string rule values are converted the way a browser would print
// them, so {"equals": 42} compares against "42".
func ParseExpectation(raw string) *Expectation {
	if raw == "" {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return nil
	}

	e := &Expectation{}
	for key, dst := range map[string]**string{
		"equals":   &e.Equals,
		"contains": &e.Contains,
		"regex":    &e.Regex,
	} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		s := stringify(v)
		*dst = &s
	}
	return e
}

// Matches reports whether output satisfies the expectation. Only the first
// present rule in equals, contains, regex order is consulted. A nil or empty
// expectation accepts everything; an invalid regex accepts nothing.
func (e *Expectation) Matches(output string) bool {
	switch {
	case e == nil:
		return true
	case e.Equals != nil:
		return strings.TrimSpace(output) == strings.TrimSpace(*e.Equals)
	case e.Contains != nil:
		return strings.Contains(output, *e.Contains)
	case e.Regex != nil:
		re, err := regexp2.Compile(*e.Regex, regexp2.ECMAScript)
		if err != nil {
			return false
		}
		re.MatchTimeout = regexTimeout
		ok, err := re.MatchString(output)
		return err == nil && ok
	default:
		return true
	}
}

// stringify renders a JSON value as display text.
func stringify(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return display(v)
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			if el != nil {
				parts[i] = display(el)
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}
