package session

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-qform/pkg/datatype"
	"github.com/goliatone/go-qform/pkg/options"
	q "github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/testsupport"
)

const (
	redToken    = "coding:urn:colors|red"
	blueToken   = "coding:urn:colors|blue"
	purpleToken = "coding:urn:colors|purple"
)

func intakeSession(t *testing.T) *Session {
	t.Helper()
	tree := testsupport.MustBuild(t, testsupport.MustDefinition(t, testsupport.FixtureIntake), nil)
	return NewStore().Create("intake", tree)
}

func colorsSession(t *testing.T, item q.DefinitionItem, value *datatype.Coding) *Session {
	t.Helper()
	item.LinkID = "colors"
	item.AnswerOption = []q.AnswerOption{
		{TypedValue: q.TypedValue{ValueCoding: &datatype.Coding{System: "urn:colors", Code: "red", Display: "Red"}}},
		{TypedValue: q.TypedValue{ValueCoding: &datatype.Coding{System: "urn:colors", Code: "blue", Display: "Blue"}}},
	}
	def := q.Definition{Item: []q.DefinitionItem{item}}
	var resp *q.Response
	if value != nil {
		resp = &q.Response{Item: []q.ResponseItem{{
			LinkID: "colors",
			Answer: []q.ResponseAnswer{{TypedValue: q.TypedValue{ValueCoding: value}}},
		}}}
	}
	return NewStore().Create("colors", testsupport.MustBuild(t, def, resp))
}

func post(pairs ...string) url.Values {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Add(pairs[i], pairs[i+1])
	}
	return values
}

func answerValue(t *testing.T, s *Session, key string) any {
	t.Helper()
	var value any
	require.NoError(t, s.Do(func(tree *q.Tree, _ []string) error {
		answer, ok := tree.FindAnswer(key)
		require.True(t, ok, "answer %s", key)
		value = answer.Value()
		return nil
	}))
	return value
}

func answerIssues(t *testing.T, s *Session, key string) []string {
	t.Helper()
	var issues []string
	require.NoError(t, s.Do(func(tree *q.Tree, _ []string) error {
		answer, ok := tree.FindAnswer(key)
		require.True(t, ok, "answer %s", key)
		issues = answer.Issues()
		return nil
	}))
	return issues
}

func answerCount(t *testing.T, s *Session, nodeKey string) int {
	t.Helper()
	var count int
	require.NoError(t, s.Do(func(tree *q.Tree, _ []string) error {
		node, ok := tree.FindNode(nodeKey)
		require.True(t, ok, "node %s", nodeKey)
		count = len(node.Answers())
		return nil
	}))
	return count
}

func trackerMode(t *testing.T, s *Session, key string) options.Mode {
	t.Helper()
	var mode options.Mode
	require.NoError(t, s.Do(func(tree *q.Tree, _ []string) error {
		answer, ok := tree.FindAnswer(key)
		require.True(t, ok)
		mode = answer.Question().Tracker().Mode(answer)
		return nil
	}))
	return mode
}

func TestApply_WritesTypedValues(t *testing.T) {
	s := intakeSession(t)

	result, err := s.Apply(post(
		"a.k2", "Ada Lovelace",
		"a.k4", "7",
		"a.k6", redToken,
		"a.k8", "555-0100",
		"action", "submit",
	))
	require.NoError(t, err)
	require.True(t, result.Completed())
	require.Empty(t, result.Invalid)

	require.Equal(t, "Ada Lovelace", answerValue(t, s, "k2"))
	require.Equal(t, int64(7), answerValue(t, s, "k4"))
	require.Equal(t, datatype.Coding{System: "urn:colors", Code: "red", Display: "Red"}, answerValue(t, s, "k6"))
	require.Equal(t, "555-0100", answerValue(t, s, "k8"))
}

func TestApply_InvalidInputBecomesIssue(t *testing.T) {
	s := intakeSession(t)

	result, err := s.Apply(post("a.k4", "lots", "action", "submit"))
	require.NoError(t, err)
	require.False(t, result.Completed())
	require.ErrorIs(t, result.Invalid["k4"], q.ErrInputFormat)
	require.Equal(t, []string{"Enter a valid value."}, answerIssues(t, s, "k4"))
	require.Nil(t, answerValue(t, s, "k4"))

	require.NoError(t, s.Do(func(_ *q.Tree, formIssues []string) error {
		require.Len(t, formIssues, 1)
		return nil
	}))

	result, err = s.Apply(post("a.k4", "3"))
	require.NoError(t, err)
	require.True(t, result.Completed())
	require.Empty(t, answerIssues(t, s, "k4"))
}

func TestApply_AddAndRemoveAnswers(t *testing.T) {
	s := intakeSession(t)

	_, err := s.Apply(post("a.k8", "555-0100", "action", "add:k7"))
	require.NoError(t, err)
	require.Equal(t, 2, answerCount(t, s, "k7"))
	require.Equal(t, "555-0100", answerValue(t, s, "k8"))

	result, err := s.Apply(post("action", "remove:k8"))
	require.NoError(t, err)
	require.Equal(t, render.VerbRemove, result.Action.Verb)
	require.False(t, result.Completed())
	require.Equal(t, 1, answerCount(t, s, "k7"))

	_, err = s.Apply(post("action", "remove:k8"))
	require.NoError(t, err, "removing a removed answer is a no-op")
	require.Equal(t, 1, answerCount(t, s, "k7"))
}

func TestApply_AddStopsAtMaxOccurs(t *testing.T) {
	s := intakeSession(t)

	for i := 0; i < 5; i++ {
		_, err := s.Apply(post("action", "add:k7"))
		require.NoError(t, err)
	}
	require.Equal(t, 3, answerCount(t, s, "k7"))
}

func TestApply_ConcurrentAddsRespectMaxOccurs(t *testing.T) {
	s := intakeSession(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Apply(post("action", "add:k7"))
		}()
	}
	wg.Wait()
	require.Equal(t, 3, answerCount(t, s, "k7"))
}

func TestApply_SpecifyOtherSubmit(t *testing.T) {
	s := intakeSession(t)

	_, err := s.Apply(post("a.k6", options.SpecifyOtherToken))
	require.NoError(t, err)
	require.Equal(t, options.ModeEnteringCustom, trackerMode(t, s, "k6"))
	require.Nil(t, answerValue(t, s, "k6"))

	result, err := s.Apply(post(
		"a.k6", options.SpecifyOtherToken,
		"custom.k6", "  ",
		"action", "custom-submit:k6",
	))
	require.NoError(t, err)
	require.ErrorIs(t, result.Invalid["k6"], options.ErrEmptyDraft)
	require.Equal(t, []string{"Enter a value or cancel."}, answerIssues(t, s, "k6"))
	require.Equal(t, options.ModeEnteringCustom, trackerMode(t, s, "k6"))

	_, err = s.Apply(post(
		"a.k6", options.SpecifyOtherToken,
		"custom.k6", "Teal",
		"action", "custom-submit:k6",
	))
	require.NoError(t, err)
	require.Equal(t, options.ModeBrowsing, trackerMode(t, s, "k6"))
	require.Equal(t, "Teal", options.LabelFor(answerValue(t, s, "k6")))
	require.Empty(t, answerIssues(t, s, "k6"))
}

func TestApply_SpecifyOtherCancelKeepsValue(t *testing.T) {
	s := intakeSession(t)

	_, err := s.Apply(post("a.k6", blueToken))
	require.NoError(t, err)
	_, err = s.Apply(post("action", "select:k6:"+options.SpecifyOtherToken))
	require.NoError(t, err)
	require.Equal(t, options.ModeEnteringCustom, trackerMode(t, s, "k6"))

	_, err = s.Apply(post(
		"a.k6", options.SpecifyOtherToken,
		"custom.k6", "Teal",
		"action", "custom-cancel:k6",
	))
	require.NoError(t, err)
	require.Equal(t, options.ModeBrowsing, trackerMode(t, s, "k6"))
	require.Equal(t, "Blue", options.LabelFor(answerValue(t, s, "k6")))
}

func TestApply_CommittedCustomValueSurvivesRepost(t *testing.T) {
	s := intakeSession(t)

	_, err := s.Apply(post("a.k6", "Teal"))
	require.NoError(t, err)
	require.Equal(t, "Teal", options.LabelFor(answerValue(t, s, "k6")))

	result, err := s.Apply(post("a.k6", "Teal", "action", "submit"))
	require.NoError(t, err)
	require.True(t, result.Completed())
	require.Equal(t, "Teal", options.LabelFor(answerValue(t, s, "k6")))
}

func TestApply_LegacyValueUntouched(t *testing.T) {
	green := &datatype.Coding{System: "urn:colors", Code: "green", Display: "Green"}
	s := colorsSession(t, q.DefinitionItem{Type: "choice"}, green)

	result, err := s.Apply(post("action", "submit"))
	require.NoError(t, err)
	require.True(t, result.Completed())
	require.Equal(t, *green, answerValue(t, s, "k2"))

	result, err = s.Apply(post("a.k2", "coding:urn:colors|green"))
	require.NoError(t, err)
	require.Empty(t, result.Invalid)
	require.Equal(t, *green, answerValue(t, s, "k2"))
}

func TestApply_UnknownTokenOnClosedChoice(t *testing.T) {
	s := colorsSession(t, q.DefinitionItem{Type: "choice"}, nil)

	result, err := s.Apply(post("a.k2", purpleToken))
	require.NoError(t, err)
	require.ErrorIs(t, result.Invalid["k2"], options.ErrUnknownToken)
	require.Equal(t, []string{"Choose one of the listed options."}, answerIssues(t, s, "k2"))
	require.Nil(t, answerValue(t, s, "k2"))
}

func TestApply_CheckBoxPrefersNewlyTickedToken(t *testing.T) {
	red := &datatype.Coding{System: "urn:colors", Code: "red", Display: "Red"}
	s := colorsSession(t, q.DefinitionItem{Type: "choice", Control: "check-box", Repeats: true}, red)

	_, err := s.Apply(post("a.k2", "", "a.k2", redToken, "a.k2", blueToken))
	require.NoError(t, err)
	require.Equal(t, "Blue", options.LabelFor(answerValue(t, s, "k2")))

	_, err = s.Apply(post("a.k2", "", "a.k2", blueToken))
	require.NoError(t, err)
	require.Equal(t, "Blue", options.LabelFor(answerValue(t, s, "k2")))

	_, err = s.Apply(post("a.k2", ""))
	require.NoError(t, err)
	require.Nil(t, answerValue(t, s, "k2"))
}

func TestApply_LookupPostsLabel(t *testing.T) {
	s := colorsSession(t, q.DefinitionItem{Type: "choice", Control: "lookup"}, nil)

	_, err := s.Apply(post("a.k2", "blue"))
	require.NoError(t, err)
	require.Equal(t, "Blue", options.LabelFor(answerValue(t, s, "k2")))

	result, err := s.Apply(post("a.k2", "Blue"))
	require.NoError(t, err)
	require.Empty(t, result.Invalid)
}

func TestApply_BooleanLastValueWins(t *testing.T) {
	def := q.Definition{Item: []q.DefinitionItem{{LinkID: "smoker", Type: "boolean"}}}
	s := NewStore().Create("smoker", testsupport.MustBuild(t, def, nil))

	_, err := s.Apply(post("a.k2", "false", "a.k2", "true"))
	require.NoError(t, err)
	require.Equal(t, true, answerValue(t, s, "k2"))

	_, err = s.Apply(post("a.k2", "false"))
	require.NoError(t, err)
	require.Equal(t, false, answerValue(t, s, "k2"))
}

func TestApply_ReadOnlyIgnoresPosts(t *testing.T) {
	def := q.Definition{Item: []q.DefinitionItem{{LinkID: "mrn", Type: "string", ReadOnly: true}}}
	s := NewStore().Create("mrn", testsupport.MustBuild(t, def, nil))

	result, err := s.Apply(post("a.k2", "forged"))
	require.NoError(t, err)
	require.True(t, result.Completed())
	require.Nil(t, answerValue(t, s, "k2"))
}

func TestApply_UnknownFieldsAreIgnored(t *testing.T) {
	s := intakeSession(t)

	result, err := s.Apply(post("a.k999", "x", "custom.k999", "y", "other", "z"))
	require.NoError(t, err)
	require.True(t, result.Completed())
}

func TestApply_RejectsBadActions(t *testing.T) {
	s := intakeSession(t)

	_, err := s.Apply(post("action", "explode:k1"))
	require.ErrorIs(t, err, render.ErrMalformedAction)

	_, err = s.Apply(post("action", "select:k2:"+redToken))
	require.ErrorIs(t, err, ErrUnknownAction, "plain string answers have no options")
}

func TestApply_StaleTargetsAreNoOps(t *testing.T) {
	def := q.Definition{Item: []q.DefinitionItem{{
		LinkID:  "visits",
		Type:    "group",
		Repeats: true,
		Item:    []q.DefinitionItem{{LinkID: "visits.note", Type: "string", Repeats: true}},
	}}}
	s := NewStore().Create("visits", testsupport.MustBuild(t, def, nil))

	var groupKey string
	require.NoError(t, s.Do(func(tree *q.Tree, _ []string) error {
		groupKey = tree.Nodes()[0].Key()
		return nil
	}))
	_, err := s.Apply(post("action", "add:"+groupKey))
	require.NoError(t, err)
	require.Equal(t, 2, answerCount(t, s, groupKey))

	var instanceKey, noteNodeKey, noteAnswerKey string
	require.NoError(t, s.Do(func(tree *q.Tree, _ []string) error {
		group, _ := tree.FindNode(groupKey)
		instance := group.Answers()[1]
		note := instance.Nodes()[0]
		instanceKey, noteNodeKey, noteAnswerKey = instance.Key(), note.Key(), note.Answers()[0].Key()
		return nil
	}))

	_, err = s.Apply(post("action", "remove:"+instanceKey))
	require.NoError(t, err)
	require.Equal(t, 1, answerCount(t, s, groupKey))

	for _, action := range []string{
		"add:" + noteNodeKey,
		"select:" + noteAnswerKey + ":" + redToken,
		"custom-submit:" + noteAnswerKey,
		"custom-cancel:" + noteAnswerKey,
		"add:k999",
	} {
		result, err := s.Apply(post("a."+noteAnswerKey, "late", "action", action))
		require.NoError(t, err, action)
		require.Empty(t, result.Invalid, action)
	}
	require.Equal(t, 1, answerCount(t, s, groupKey))
}

func TestApply_UpdatesTimestamp(t *testing.T) {
	ticks := 0
	clock := func() time.Time {
		ticks++
		return time.Date(2024, 5, 1, 9, ticks, 0, 0, time.UTC)
	}
	tree := testsupport.MustBuild(t, testsupport.MustDefinition(t, testsupport.FixtureIntake), nil)
	s := NewStore(WithClock(clock)).Create("intake", tree)
	created := s.Created()

	_, err := s.Apply(post("a.k2", "Ada"))
	require.NoError(t, err)
	require.True(t, s.Updated().After(created))
}
