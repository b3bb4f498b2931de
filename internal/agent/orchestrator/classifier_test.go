package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/tripgram/server/internal/agent/model"
)

func TestClassifyCategories(t *testing.T) {
	cases := []struct {
		reply string
		want  model.Category
	}{
		{"DATA", model.CategoryData},
		{"RECOMMEND", model.CategoryRecommendation},
		{"GENERAL", model.CategoryOther},
	}
	for _, c := range cases {
		cm := &scriptedModel{replies: []string{c.reply}}
		got := NewClassifier(cm, testTimeout).Classify(context.Background(), "show me my posts")
		if got != c.want {
			t.Errorf("reply %q: got %v, want %v", c.reply, got, c.want)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	cm := &scriptedModel{replies: []string{"RECOMMEND"}}
	classifier := NewClassifier(cm, testTimeout)

	first := classifier.Classify(context.Background(), "suggest places for me")
	second := classifier.Classify(context.Background(), "suggest places for me")
	if first != second {
		t.Errorf("same query classified differently: %v then %v", first, second)
	}
}

func TestClassifyFailsOpenOnModelError(t *testing.T) {
	cm := &scriptedModel{err: errors.New("model unavailable")}
	got := NewClassifier(cm, testTimeout).Classify(context.Background(), "hello")
	if got != model.CategoryData {
		t.Errorf("got %v, want CategoryData on model failure", got)
	}
}

func TestClassifyFailsOpenOnEmptyOutput(t *testing.T) {
	cm := &scriptedModel{replies: []string{"   "}}
	got := NewClassifier(cm, testTimeout).Classify(context.Background(), "hello")
	if got != model.CategoryData {
		t.Errorf("got %v, want CategoryData on unparseable output", got)
	}
}
