package scoring

import (
	"sort"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-engine/internal/models"
	"github.com/shopspring/decimal"
)

// ===== CHOICE =====

// ChoiceKey scores single-choice and multi-choice questions.
type ChoiceKey struct {
	keyBase
	options map[string]bool // choice id -> correct
	correct []string
	partial bool
}

func newChoiceKey(base keyBase, q *models.Question) *ChoiceKey {
	k := &ChoiceKey{keyBase: base, options: make(map[string]bool, len(q.Choices)), partial: q.PartialCredit}
	for _, choice := range q.Choices {
		id := idString(choice.ID)
		k.options[id] = choice.IsCorrect
		if choice.IsCorrect {
			k.correct = append(k.correct, id)
		}
	}
	return k
}

func (k *ChoiceKey) size() int         { return len(k.correct) }
func (k *ChoiceKey) bareField() string { return "selected_options" }

func (k *ChoiceKey) normalize(object []byte) (Answer, error) {
	var wire models.ChoiceAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(wire.SelectedOptions))
	for _, v := range wire.SelectedOptions {
		if id := strings.TrimSpace(string(v)); id != "" {
			ids = append(ids, id)
		}
	}
	return Selection(dedupe(ids)), nil
}

func (k *ChoiceKey) score(answer Answer) decimal.Decimal {
	selected, _ := answer.(Selection)

	if k.kind == models.SingleChoice {
		if len(selected) == 1 && k.options[selected[0]] {
			return k.points
		}
		return decimal.Zero
	}

	correct, incorrect := 0, 0
	for _, id := range selected {
		if k.options[id] {
			correct++
		} else {
			incorrect++
		}
	}

	if !k.partial {
		if incorrect == 0 && correct == len(k.correct) {
			return k.points
		}
		return decimal.Zero
	}

	penalty := k.negativeMarks.Mul(decimal.NewFromInt(int64(incorrect)))
	return k.proportion(correct, len(k.correct)).Sub(penalty)
}

// ===== FILL IN BLANK =====

type BlankKey struct {
	keyBase
	blanks        []blankRule
	caseSensitive bool
}

type blankRule struct {
	number   string
	accepted map[string]struct{}
}

func newBlankKey(base keyBase, q *models.Question) *BlankKey {
	k := &BlankKey{keyBase: base, caseSensitive: q.CaseSensitive}
	blanks := append([]models.Blank(nil), q.Blanks...)
	sort.SliceStable(blanks, func(i, j int) bool { return blanks[i].Number < blanks[j].Number })

	for _, blank := range blanks {
		rule := blankRule{number: strconv.Itoa(blank.Number), accepted: make(map[string]struct{})}
		for _, answer := range blank.AcceptedAnswers {
			if normalized := normalizeText(answer, k.caseSensitive); normalized != "" {
				rule.accepted[normalized] = struct{}{}
			}
		}
		k.blanks = append(k.blanks, rule)
	}
	return k
}

func (k *BlankKey) size() int { return len(k.blanks) }

func (k *BlankKey) normalize(object []byte) (Answer, error) {
	var wire models.BlankAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	return entriesOf(wire.Blanks), nil
}

func (k *BlankKey) score(answer Answer) decimal.Decimal {
	entries, _ := answer.(Entries)
	correct := 0
	for _, rule := range k.blanks {
		submitted := normalizeText(entries[rule.number], k.caseSensitive)
		if submitted == "" {
			continue
		}
		if _, ok := rule.accepted[submitted]; ok {
			correct++
		}
	}
	return k.proportion(correct, len(k.blanks))
}

// ===== MATCHING =====

type MatchKey struct {
	keyBase
	pairs []pairRule
}

type pairRule struct {
	id    string
	right string
}

func newMatchKey(base keyBase, q *models.Question) *MatchKey {
	k := &MatchKey{keyBase: base}
	for _, pair := range q.MatchPairs {
		k.pairs = append(k.pairs, pairRule{id: idString(pair.ID), right: strings.TrimSpace(pair.RightItem)})
	}
	return k
}

func (k *MatchKey) size() int { return len(k.pairs) }

func (k *MatchKey) normalize(object []byte) (Answer, error) {
	var wire models.MatchingAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	return entriesOf(wire.Matches), nil
}

func (k *MatchKey) score(answer Answer) decimal.Decimal {
	entries, _ := answer.(Entries)
	correct := 0
	for _, pair := range k.pairs {
		if submitted, ok := entries[pair.id]; ok && submitted == pair.right {
			correct++
		}
	}
	return k.proportion(correct, len(k.pairs))
}

// ===== DRAG INTO ZONE / DRAG INTO TEXT / DROPDOWN IN TEXT =====

// PlacementKey scores questions where a label is placed into a numbered
// blank or zone. Correct tokens are grouped by their target; a group is
// satisfied when the value placed there equals one of its labels.
//
// Drag-into-zone clients may instead key positions by token id with the
// zone number as value. That form is recognised when every key names a
// token of the question and none of them is also a target number.
type PlacementKey struct {
	keyBase
	groups []placementGroup
	tokens map[string]tokenPlacement // token id -> target
}

type tokenPlacement struct {
	target  string
	correct bool
}

type placementGroup struct {
	target string
	labels map[string]struct{}
}

func newPlacementKey(base keyBase, q *models.Question) *PlacementKey {
	byTarget := make(map[int]map[string]struct{})
	tokens := make(map[string]tokenPlacement, len(q.DragTokens))
	for _, token := range q.DragTokens {
		tokens[idString(token.ID)] = tokenPlacement{target: strconv.Itoa(token.BlankNumber), correct: token.IsCorrect}
		if !token.IsCorrect {
			continue
		}
		if byTarget[token.BlankNumber] == nil {
			byTarget[token.BlankNumber] = make(map[string]struct{})
		}
		byTarget[token.BlankNumber][strings.TrimSpace(token.Label)] = struct{}{}
	}

	targets := make([]int, 0, len(byTarget))
	for target := range byTarget {
		targets = append(targets, target)
	}
	sort.Ints(targets)

	k := &PlacementKey{keyBase: base, tokens: tokens}
	for _, target := range targets {
		k.groups = append(k.groups, placementGroup{target: strconv.Itoa(target), labels: byTarget[target]})
	}
	return k
}

func (k *PlacementKey) size() int { return len(k.groups) }

func (k *PlacementKey) normalize(object []byte) (Answer, error) {
	var wire models.PlacementAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	if len(wire.Positions) == 0 && k.kind == models.DropdownInText {
		return entriesOf(wire.Blanks), nil
	}
	return entriesOf(wire.Positions), nil
}

func (k *PlacementKey) score(answer Answer) decimal.Decimal {
	entries, _ := answer.(Entries)
	if k.keyedByToken(entries) {
		return k.scoreByToken(entries)
	}
	correct := 0
	for _, group := range k.groups {
		if placed, ok := entries[group.target]; ok {
			if _, match := group.labels[placed]; match {
				correct++
			}
		}
	}
	return k.proportion(correct, len(k.groups))
}

func (k *PlacementKey) keyedByToken(entries Entries) bool {
	if len(entries) == 0 {
		return false
	}
	for key := range entries {
		if _, ok := k.tokens[key]; !ok {
			return false
		}
		for _, group := range k.groups {
			if group.target == key {
				return false
			}
		}
	}
	return true
}

// scoreByToken satisfies a target when a correct token for it was dropped
// there. Distractors earn nothing wherever they land.
func (k *PlacementKey) scoreByToken(entries Entries) decimal.Decimal {
	satisfied := make(map[string]struct{}, len(k.groups))
	for id, placed := range entries {
		token := k.tokens[id]
		if !token.correct {
			continue
		}
		if zone, err := strconv.Atoi(placed); err == nil && strconv.Itoa(zone) == token.target {
			satisfied[token.target] = struct{}{}
		}
	}
	return k.proportion(len(satisfied), len(k.groups))
}

// ===== NUMERIC =====

// maxNumericExponent bounds the decimal exponent of a submitted number so
// comparing it against the key stays cheap.
const maxNumericExponent = 64

type NumericKey struct {
	keyBase
	value     *decimal.Decimal
	tolerance decimal.Decimal
	min       *decimal.Decimal
	max       *decimal.Decimal
}

func newNumericKey(base keyBase, q *models.Question) *NumericKey {
	k := &NumericKey{keyBase: base}
	if q.NumericKey == nil {
		return k
	}
	k.value = decimalPtr(q.NumericKey.Value)
	k.tolerance = decimal.NewFromFloat(q.NumericKey.Tolerance).Abs()
	k.min = decimalPtr(q.NumericKey.MinValue)
	k.max = decimalPtr(q.NumericKey.MaxValue)
	return k
}

func (k *NumericKey) size() int {
	if k.value == nil && k.min == nil && k.max == nil {
		return 0
	}
	return 1
}

func (k *NumericKey) bareField() string { return "value" }

func (k *NumericKey) normalize(object []byte) (Answer, error) {
	var wire models.NumericAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(string(wire.Value))
	if raw == "" {
		return Number{}, nil
	}
	value, ok := parseDecimalLoose(raw)
	if !ok {
		return nil, k.malformed("value "+strconv.Quote(raw)+" is not a number", nil)
	}
	if exp := value.Exponent(); exp > maxNumericExponent || exp < -maxNumericExponent {
		return nil, k.malformed("value "+strconv.Quote(raw)+" is out of range", nil)
	}
	return Number{Value: value, Present: true}, nil
}

func (k *NumericKey) score(answer Answer) decimal.Decimal {
	number, _ := answer.(Number)
	x := number.Value

	if k.value != nil && x.Sub(*k.value).Abs().LessThanOrEqual(k.tolerance) {
		return k.points
	}
	if k.min != nil || k.max != nil {
		aboveMin := k.min == nil || x.GreaterThanOrEqual(*k.min)
		belowMax := k.max == nil || x.LessThanOrEqual(*k.max)
		if aboveMin && belowMax {
			return k.points
		}
	}
	return decimal.Zero
}

// ===== FREE TEXT =====

type TextKey struct {
	keyBase
	expected      string
	caseSensitive bool
	keywords      [][]string
	allowPartial  bool
}

func newTextKey(base keyBase, q *models.Question) *TextKey {
	k := &TextKey{keyBase: base}
	if q.TextKey == nil {
		return k
	}
	k.expected = strings.TrimSpace(q.TextKey.Expected)
	k.caseSensitive = q.TextKey.CaseSensitive
	k.allowPartial = q.TextKey.AllowPartialMatch
	for _, keyword := range q.TextKey.Keywords {
		if phrase := words(keyword, k.caseSensitive); len(phrase) > 0 {
			k.keywords = append(k.keywords, phrase)
		}
	}
	return k
}

func (k *TextKey) size() int {
	if k.expected == "" && len(k.keywords) == 0 {
		return 0
	}
	return 1
}

func (k *TextKey) bareField() string { return "text" }

func (k *TextKey) normalize(object []byte) (Answer, error) {
	var wire models.FreeTextAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	return Text(wire.Text), nil
}

func (k *TextKey) score(answer Answer) decimal.Decimal {
	text, _ := answer.(Text)
	submitted := string(text)

	if k.expected != "" && normalizeText(submitted, k.caseSensitive) == normalizeText(k.expected, k.caseSensitive) {
		return k.points
	}

	if len(k.keywords) > 0 {
		tokens := words(submitted, k.caseSensitive)
		found := 0
		for _, keyword := range k.keywords {
			if containsPhrase(tokens, keyword) {
				found++
			}
		}
		return k.proportion(found, len(k.keywords))
	}

	if k.allowPartial && k.expected != "" {
		expectedWords := dedupe(words(k.expected, k.caseSensitive))
		submittedWords := make(map[string]struct{})
		for _, w := range words(submitted, k.caseSensitive) {
			submittedWords[w] = struct{}{}
		}
		matched := 0
		for _, w := range expectedWords {
			if _, ok := submittedWords[w]; ok {
				matched++
			}
		}
		if matched*2 > len(expectedWords) {
			return k.proportion(matched, len(expectedWords))
		}
	}
	return decimal.Zero
}

// ===== MATRIX =====

// MatrixKey covers every row x column combination. Combinations without a
// stored cell are expected to stay unchecked. Submitted keys outside the
// grid are dropped, so a payload naming no grid cell counts as unanswered.
type MatrixKey struct {
	keyBase
	cells map[string]bool
}

func newMatrixKey(base keyBase, q *models.Question) *MatrixKey {
	stored := make(map[string]bool, len(q.MatrixCells))
	for _, cell := range q.MatrixCells {
		stored[cellKey(cell.RowID, cell.ColumnID)] = cell.IsCorrect
	}

	k := &MatrixKey{keyBase: base, cells: make(map[string]bool, len(q.MatrixRows)*len(q.MatrixColumns))}
	for _, row := range q.MatrixRows {
		for _, column := range q.MatrixColumns {
			key := cellKey(row.ID, column.ID)
			k.cells[key] = stored[key]
		}
	}
	return k
}

func (k *MatrixKey) size() int { return len(k.cells) }

func (k *MatrixKey) normalize(object []byte) (Answer, error) {
	var wire models.MatrixAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	cells := make(Cells, len(wire.Cells))
	for key, checked := range wire.Cells {
		key = strings.ReplaceAll(key, " ", "")
		if _, onGrid := k.cells[key]; onGrid {
			cells[key] = checked
		}
	}
	return cells, nil
}

func (k *MatrixKey) score(answer Answer) decimal.Decimal {
	cells, _ := answer.(Cells)
	correct := 0
	for key, expected := range k.cells {
		if cells[key] == expected {
			correct++
		}
	}
	return k.proportion(correct, len(k.cells))
}

// ===== ORDERING =====

type OrderingKey struct {
	keyBase
	positions map[string]int // item id -> correct 1-based position
}

func newOrderingKey(base keyBase, q *models.Question) *OrderingKey {
	k := &OrderingKey{keyBase: base, positions: make(map[string]int, len(q.OrderingItems))}
	for _, item := range q.OrderingItems {
		k.positions[idString(item.ID)] = item.Position
	}
	return k
}

func (k *OrderingKey) size() int         { return len(k.positions) }
func (k *OrderingKey) bareField() string { return "order" }

func (k *OrderingKey) normalize(object []byte) (Answer, error) {
	var wire models.OrderingAnswer
	if err := k.decode(object, &wire); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(wire.Order))
	for _, v := range wire.Order {
		ids = append(ids, strings.TrimSpace(string(v)))
	}
	return Sequence(dedupe(ids)), nil
}

func (k *OrderingKey) score(answer Answer) decimal.Decimal {
	sequence, _ := answer.(Sequence)
	correct := 0
	for i, id := range sequence {
		if position, ok := k.positions[id]; ok && position == i+1 {
			correct++
		}
	}
	return k.proportion(correct, len(k.positions))
}

// ===== HELPERS =====

func entriesOf(values map[string]models.AnswerValue) Entries {
	entries := make(Entries, len(values))
	for key, value := range values {
		text := strings.TrimSpace(string(value))
		if text == "" {
			continue
		}
		entries[strings.TrimSpace(key)] = text
	}
	return entries
}

func decimalPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
