package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerValue is a scalar answer token. Clients send ids and labels both as
// JSON strings and as numbers, so both decode to the same string form.
type AnswerValue string

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty answer value")
	}

	switch data[0] {
	case 'n':
		*v = ""
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AnswerValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = AnswerValue(strconv.FormatBool(b))
	case '{', '[':
		return fmt.Errorf("expected a string or number, got %s", data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = AnswerValue(n.String())
	}
	return nil
}

// AnswerValues accepts either a JSON array of scalars or a single scalar.
type AnswerValues []AnswerValue

func (vs *AnswerValues) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []AnswerValue
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*vs = items
		return nil
	}

	var single AnswerValue
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*vs = nil
	} else {
		*vs = AnswerValues{single}
	}
	return nil
}

// Wire shapes of submitted answers, one per question family.

type ChoiceAnswer struct {
	SelectedOptions AnswerValues `json:"selected_options"`
}

type BlankAnswer struct {
	Blanks map[string]AnswerValue `json:"blanks"` // blank number -> text
}

type MatchingAnswer struct {
	Matches map[string]AnswerValue `json:"matches"` // pair id -> right item
}

type PlacementAnswer struct {
	Positions map[string]AnswerValue `json:"positions"` // blank/zone number -> label
	Blanks    map[string]AnswerValue `json:"blanks"`    // accepted for dropdown-in-text
}

type NumericAnswer struct {
	Value AnswerValue `json:"value"`
}

type FreeTextAnswer struct {
	Text AnswerValue `json:"text"`
}

type MatrixAnswer struct {
	Cells map[string]bool `json:"cells"` // "row_id:col_id" -> checked
}

type OrderingAnswer struct {
	Order AnswerValues `json:"order"` // item ids in submitted order
}
