package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/david/support-finder/internal/filter"
	"github.com/david/support-finder/internal/models"
)

func threeQuestions() []Question {
	return []Question{
		{Question: "quiz.urgency.question", TargetDimension: filter.Urgency, Answers: []Answer{{Key: "immediate"}, {Key: "later"}}},
		{Question: "quiz.supportType.question", TargetDimension: filter.SupportType, Answers: []Answer{{Key: "legal"}, {Key: "health"}}},
		{Question: "quiz.location.question", TargetDimension: filter.Location, Answers: []Answer{{Key: "Vienna"}, {Key: "Online"}}},
	}
}

func TestController_Flow(t *testing.T) {
	state := filter.State{}
	c := New(threeQuestions(), state)

	assert.Equal(t, 0, c.CurrentIndex())
	assert.False(t, c.Completed())

	require.NoError(t, c.Answer("immediate"))
	assert.Equal(t, 1, c.CurrentIndex())
	require.NoError(t, c.Answer("legal"))
	assert.Equal(t, 2, c.CurrentIndex())
	require.NoError(t, c.Skip())

	assert.True(t, c.Completed())
	assert.Equal(t, map[string]string{"urgency": "immediate", "supportType": "legal"}, c.Answers())
	assert.Equal(t, filter.State{"urgency": "immediate", "supportType": "legal"}, state)

	_, ok := c.Current()
	assert.False(t, ok)
}

func TestController_AnswerReplacesDimension(t *testing.T) {
	state := filter.State{filter.Urgency: "later", filter.Location: "Graz"}
	c := New(threeQuestions(), state)

	require.NoError(t, c.Answer("immediate"))
	assert.Equal(t, "immediate", state.Get(filter.Urgency))
	assert.Equal(t, "Graz", state.Get(filter.Location))
}

func TestController_Reset(t *testing.T) {
	state := filter.State{filter.Level: "A1"}
	c := New(threeQuestions(), state)
	require.NoError(t, c.Answer("immediate"))
	require.NoError(t, c.Answer("legal"))

	c.Reset()

	assert.Equal(t, 0, c.CurrentIndex())
	assert.Empty(t, c.Answers())
	assert.False(t, c.Completed())
	assert.Equal(t, filter.State{filter.Level: "A1"}, state, "only quiz dimensions are cleared")

	q, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, filter.Urgency, q.TargetDimension)
}

func TestController_ResetAfterCompletion(t *testing.T) {
	c := New(threeQuestions(), nil)
	c.Close()
	require.True(t, c.Completed())

	c.Reset()
	assert.False(t, c.Completed())
	require.NoError(t, c.Answer("immediate"))
}

func TestController_EmptyQuestionsStartsCompleted(t *testing.T) {
	c := New(nil, filter.State{})
	assert.True(t, c.Completed())
	assert.ErrorIs(t, c.Answer("x"), ErrCompleted)

	c.Reset()
	assert.True(t, c.Completed())

	answered, total := c.Progress()
	assert.Equal(t, 0, answered)
	assert.Equal(t, 0, total)
}

func TestController_CloseKeepsAnswers(t *testing.T) {
	state := filter.State{}
	c := New(threeQuestions(), state)
	require.NoError(t, c.Answer("immediate"))

	c.Close()

	assert.True(t, c.Completed())
	assert.Equal(t, 1, c.CurrentIndex())
	assert.Equal(t, map[string]string{"urgency": "immediate"}, c.Answers())
	assert.Equal(t, "immediate", state.Get(filter.Urgency))
}

func TestController_CompletedRejectsTransitions(t *testing.T) {
	state := filter.State{}
	c := New(threeQuestions(), state)
	c.Close()

	assert.ErrorIs(t, c.Answer("legal"), ErrCompleted)
	assert.ErrorIs(t, c.Skip(), ErrCompleted)
	assert.ErrorIs(t, c.Choose(0), ErrCompleted)
	assert.Empty(t, c.Answers())
	assert.Empty(t, state)
}

func TestController_Choose(t *testing.T) {
	state := filter.State{}
	c := New(threeQuestions(), state)

	require.NoError(t, c.Choose(1))
	assert.Equal(t, "later", state.Get(filter.Urgency))

	err := c.Choose(5)
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.ErrorIs(t, c.Choose(-1), ErrInvalidAnswer)
	assert.Equal(t, 1, c.CurrentIndex(), "invalid choice does not advance")
}

func TestController_BlankAnswerSkips(t *testing.T) {
	state := filter.State{}
	c := New(threeQuestions(), state)

	require.NoError(t, c.Answer("   "))
	assert.Equal(t, 1, c.CurrentIndex())
	assert.Empty(t, c.Answers())
	assert.Empty(t, state)
}

func TestController_OnComplete(t *testing.T) {
	var calls []State
	c := New(threeQuestions(), nil, WithOnComplete(func(s State) {
		calls = append(calls, s)
	}))

	require.NoError(t, c.Skip())
	require.NoError(t, c.Skip())
	assert.Empty(t, calls)
	require.NoError(t, c.Answer("Online"))

	require.Len(t, calls, 1)
	assert.True(t, calls[0].Completed)
	assert.Equal(t, map[string]string{"location": "Online"}, calls[0].Answers)

	c.Close()
	assert.Len(t, calls, 1, "closing a completed quiz does not fire again")

	c.Reset()
	c.Close()
	assert.Len(t, calls, 2)
}

func TestController_Progress(t *testing.T) {
	c := New(threeQuestions(), nil)
	require.NoError(t, c.Answer("immediate"))
	require.NoError(t, c.Skip())

	answered, total := c.Progress()
	assert.Equal(t, 1, answered)
	assert.Equal(t, 3, total)
}

func TestController_SnapshotRestore(t *testing.T) {
	c := New(threeQuestions(), filter.State{})
	require.NoError(t, c.Answer("immediate"))
	snap := c.Snapshot()

	// The snapshot is a copy.
	snap.Answers["urgency"] = "changed"
	assert.Equal(t, "immediate", c.Answers()["urgency"])
	snap.Answers["urgency"] = "immediate"

	other := New(threeQuestions(), filter.State{})
	require.NoError(t, other.Restore(snap))
	assert.Equal(t, 1, other.CurrentIndex())
	assert.Equal(t, c.Answers(), other.Answers())

	require.NoError(t, other.Answer("legal"))
	assert.Equal(t, 2, other.CurrentIndex())
}

func TestController_RestoreRejectsInvalidState(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
		state     State
	}{
		{name: "negative index", questions: threeQuestions(), state: State{CurrentIndex: -1}},
		{name: "index past end", questions: threeQuestions(), state: State{CurrentIndex: 3}},
		{name: "unknown dimension", questions: threeQuestions(), state: State{Answers: map[string]string{"colour": "red"}}},
		{name: "blank answer", questions: threeQuestions(), state: State{Answers: map[string]string{"urgency": " "}}},
		{name: "asking without questions", state: State{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.questions, nil)
			before := c.Snapshot()
			assert.ErrorIs(t, c.Restore(tt.state), ErrInvalidState)
			assert.Equal(t, before, c.Snapshot())
		})
	}
}

func TestAnswer_Decode(t *testing.T) {
	var fromYAML []Answer
	require.NoError(t, yaml.Unmarshal([]byte(`
- legal
- key: health
  label_key: quiz.supportType.health
- key: " psych "
  label:
    de: Psychologisch
    en: Psychological
`), &fromYAML))

	var fromJSON []Answer
	require.NoError(t, json.Unmarshal([]byte(`["legal", {"key": "health", "labelKey": "quiz.supportType.health"}, {"key": " psych ", "label": {"de": "Psychologisch", "en": "Psychological"}}]`), &fromJSON))

	want := []Answer{
		{Key: "legal"},
		{Key: "health", LabelKey: "quiz.supportType.health"},
		{Key: "psych", Label: models.LocalizedText{"de": "Psychologisch", "en": "Psychological"}},
	}
	assert.Equal(t, want, fromYAML)
	assert.Equal(t, want, fromJSON)
}

func TestAnswer_Text(t *testing.T) {
	get := func(key, lang string) string {
		if key == "quiz.supportType.health" && lang == "en" {
			return "Health"
		}
		return key
	}

	assert.Equal(t, "Psychological", Answer{Key: "psych", Label: models.LocalizedText{"de": "Psychologisch", "en": "Psychological"}}.Text(get, "en"))
	assert.Equal(t, "Health", Answer{Key: "health", LabelKey: "quiz.supportType.health"}.Text(get, "en"))
	assert.Equal(t, "legal", Answer{Key: "legal"}.Text(get, "en"))
	assert.Equal(t, "legal", Answer{Key: "legal", LabelKey: "x"}.Text(nil, "en"))

	q := Question{Question: "quiz.urgency.question"}
	assert.Equal(t, "quiz.urgency.question", q.Prompt(nil, "de"))
	assert.Equal(t, "quiz.urgency.question", q.Prompt(get, "de"))
}
