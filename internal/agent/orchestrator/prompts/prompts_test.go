package prompts

import (
	"context"
	"strings"
	"testing"
)

func TestRenderSupervisorSystemSubstitutesOptions(t *testing.T) {
	got, err := RenderSupervisorSystem(context.Background(), []string{"FINISH", "DataRetrieval", "Recommender", "Assistant"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "FINISH, DataRetrieval, Recommender, Assistant") {
		t.Errorf("options not substituted:\n%s", got)
	}
	if strings.Contains(got, "{options}") || strings.Contains(got, "{members}") {
		t.Errorf("placeholder left unsubstituted:\n%s", got)
	}
}

func TestRenderRetrievalSystem(t *testing.T) {
	got, err := RenderRetrievalSystem(context.Background(), "tables: users, posts", 42, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "tables: users, posts") {
		t.Errorf("schema missing:\n%s", got)
	}
	if !strings.Contains(got, "42") {
		t.Errorf("user id missing:\n%s", got)
	}
	if strings.Contains(got, "external_resource_url") {
		t.Errorf("media directive present without visual keywords:\n%s", got)
	}

	withImages, err := RenderRetrievalSystem(context.Background(), "tables", 42, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(withImages, "external_resource_url") {
		t.Errorf("media directive missing:\n%s", withImages)
	}
}

func TestRenderRecommenderSystemContextOptional(t *testing.T) {
	plain, err := RenderRecommenderSystem(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(plain, "Information already looked up") {
		t.Errorf("context block present without context:\n%s", plain)
	}

	withCtx, err := RenderRecommenderSystem(context.Background(), 1, "likes beaches")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(withCtx, "likes beaches") {
		t.Errorf("context missing:\n%s", withCtx)
	}
}

func TestRenderSynthesizerSystemKeepsJSONContract(t *testing.T) {
	got, err := RenderSynthesizerSystem(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, `"response"`) {
		t.Errorf("output contract missing:\n%s", got)
	}
}
