package llm

import (
	"testing"
)

type item struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestParseArray_PlainArray(t *testing.T) {
	input := `[{"name": "a", "score": 80}, {"name": "b", "score": 40}]`
	result, err := ParseArray[item](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result))
	}
	if result[0].Name != "a" || result[0].Score != 80 {
		t.Errorf("unexpected first item: %+v", result[0])
	}
}

func TestParseArray_SurroundingProse(t *testing.T) {
	input := `Here are the results you asked for:
[{"name": "a", "score": 75}]
Let me know if you need anything else.`
	result, err := ParseArray[item](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].Score != 75 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseArray_MarkdownFence(t *testing.T) {
	input := "```json\n[{\"name\": \"a\", \"score\": 60}]\n```"
	result, err := ParseArray[item](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].Score != 60 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseArray_NestedArrays(t *testing.T) {
	type nested struct {
		Tags []string `json:"tags"`
	}
	input := `[{"tags": ["x", "y"]}, {"tags": []}]`
	result, err := ParseArray[nested](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 || len(result[0].Tags) != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseArray_BracketsInsideStrings(t *testing.T) {
	input := `[{"name": "uses ] and [ inside", "score": 10}]`
	result, err := ParseArray[item](input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].Name != "uses ] and [ inside" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestParseArray_NoArray(t *testing.T) {
	_, err := ParseArray[item]("I could not produce any results, sorry.")
	if err == nil {
		t.Fatal("expected error for response without JSON array")
	}
	if KindOf(err) != KindContract {
		t.Errorf("expected contract error kind, got %s", KindOf(err))
	}
}

func TestParseArray_TruncatedArray(t *testing.T) {
	_, err := ParseArray[item](`[{"name": "a", "score": 80}, {"name": "b"`)
	if err == nil {
		t.Fatal("expected error for truncated array")
	}
}

func TestParseArray_ObjectNotArray(t *testing.T) {
	_, err := ParseArray[item](`{"name": "a", "score": 80}`)
	if err == nil {
		t.Fatal("expected error when response is an object, not an array")
	}
}
