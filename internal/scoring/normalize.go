package scoring

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Answer is a normalized submission. Each key variant produces and consumes
// exactly one Answer shape.
type Answer interface {
	Empty() bool
}

// Selection holds chosen option ids, deduplicated in submission order.
type Selection []string

func (s Selection) Empty() bool { return len(s) == 0 }

// Entries maps a slot (blank number, pair id, zone number) to submitted text.
type Entries map[string]string

func (e Entries) Empty() bool { return len(e) == 0 }

type Number struct {
	Value   decimal.Decimal
	Present bool
}

func (n Number) Empty() bool { return !n.Present }

type Text string

func (t Text) Empty() bool { return strings.TrimSpace(string(t)) == "" }

// Cells maps "row_id:col_id" to whether the learner checked the cell.
type Cells map[string]bool

func (c Cells) Empty() bool { return len(c) == 0 }

// Sequence holds item ids in submitted order.
type Sequence []string

func (s Sequence) Empty() bool { return len(s) == 0 }

// Normalize decodes raw into the typed answer key expects. An absent or
// empty payload yields an empty answer and no error; a payload that cannot
// take the expected shape yields a *MalformedAnswerError.
func Normalize(key QuestionKey, raw []byte) (Answer, error) {
	object, err := canonicalPayload(raw, key.bareField())
	if err != nil {
		return nil, key.malformed("payload is not a JSON object", err)
	}
	return key.normalize(object)
}

var emptyObject = []byte("{}")

// canonicalPayload returns raw as a JSON object. A JSON string holding a
// serialized object is unwrapped once. Any other non-object value is wrapped
// as {bareField: value} when the question type has a bare form.
func canonicalPayload(raw []byte, bareField string) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return emptyObject, nil
	}
	if !json.Valid(trimmed) {
		return nil, errInvalidJSON
	}

	switch trimmed[0] {
	case '{':
		return trimmed, nil
	case '"':
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return emptyObject, nil
		}
		if strings.HasPrefix(inner, "{") && json.Valid([]byte(inner)) {
			return []byte(inner), nil
		}
	}

	if bareField == "" {
		return nil, errNotAnObject
	}
	wrapped, err := json.Marshal(map[string]json.RawMessage{bareField: trimmed})
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
