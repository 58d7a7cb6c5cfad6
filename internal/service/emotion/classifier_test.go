package emotion_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai/aitest"
	"github.com/zhouzirui/mind-chat/backend/internal/service/emotion"
)

func newClassifier(t *testing.T, stub *aitest.StubModel) *emotion.Classifier {
	t.Helper()
	client, err := ai.NewClient(context.Background(), stub, ai.ClientConfig{ModelID: "m"}, nil)
	require.NoError(t, err)
	return emotion.NewClassifier(client, nil)
}

func TestClassifyValidPair(t *testing.T) {
	stub := aitest.Answering(`{"main":"best","sub":"proud"}`)
	c := newClassifier(t, stub)

	res := c.Classify(context.Background(), "I finished my marathon!")

	require.Equal(t, emotion.Valid, res.Outcome)
	assert.Equal(t, mood.Pair{Main: mood.Best, Sub: mood.Proud}, res.Pair)

	call := stub.LastCall()
	require.Len(t, call.Input, 2)
	assert.Equal(t, schema.System, call.Input[0].Role)
	assert.Contains(t, call.Input[1].Content, "Journal: I finished my marathon!")
	assert.Contains(t, call.Input[1].Content, "- bad: angry, sad, lonely, anxious, hopeless")
}

func TestClassifyCrossCategoryIsInvalid(t *testing.T) {
	c := newClassifier(t, aitest.Answering(`{"main":"best","sub":"angry"}`))

	res := c.Classify(context.Background(), "note")

	assert.Equal(t, emotion.Invalid, res.Outcome)
	assert.ErrorIs(t, res.Err, mood.ErrInvalidPair)
}

func TestClassifyNonJSONIsInvalid(t *testing.T) {
	c := newClassifier(t, aitest.Answering("not json"))

	assert.Equal(t, emotion.Invalid, c.Classify(context.Background(), "note").Outcome)
}

func TestClassifyServiceError(t *testing.T) {
	c := newClassifier(t, aitest.Failing(errors.New("connection reset")))

	res := c.Classify(context.Background(), "note")

	assert.Equal(t, emotion.ServiceError, res.Outcome)
	assert.Error(t, res.Err)
}

func TestClassifyMakesSingleCall(t *testing.T) {
	stub := aitest.Answering("garbage")
	c := newClassifier(t, stub)

	c.Classify(context.Background(), "note")

	assert.Len(t, stub.Calls(), 1)
}

func TestClassifyNoteWithBraces(t *testing.T) {
	stub := aitest.Answering(`{"main":"good","sub":"calm"}`)
	c := newClassifier(t, stub)

	res := c.Classify(context.Background(), "today {was} fine")

	require.Equal(t, emotion.Valid, res.Outcome)
	assert.True(t, strings.HasSuffix(stub.LastCall().Input[1].Content, "today {was} fine"))
}

func TestParseOutput(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"plain", `{"main":"poor","sub":"confused"}`, true},
		{"padded and cased", "  {\"main\":\" Good \",\"sub\":\"HOPEFUL\"}\n", true},
		{"code fence", "```json\n{\"main\":\"bad\",\"sub\":\"sad\"}\n```", true},
		{"prose around", `Sure! {"main":"bad","sub":"sad"}`, false},
		{"unknown main", `{"main":"great","sub":"proud"}`, false},
		{"missing sub", `{"main":"good"}`, false},
		{"array", `["good","calm"]`, false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := emotion.ParseOutput(tc.raw)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
