package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestClassify_Nil(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestClassify_PassesThroughStructured(t *testing.T) {
	orig := NewError(KindContract, "bad payload", nil)
	wrapped := fmt.Errorf("call failed: %w", orig)
	got := Classify(wrapped)
	if got.Kind != KindContract {
		t.Errorf("expected contract kind, got %s", got.Kind)
	}
}

func TestClassify_DeadlineExceeded(t *testing.T) {
	got := Classify(fmt.Errorf("request: %w", context.DeadlineExceeded))
	if got.Kind != KindTimeout {
		t.Errorf("expected timeout kind, got %s", got.Kind)
	}
}

func TestClassify_APIErrorStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindRateLimit},
		{500, KindEndpoint},
		{503, KindEndpoint},
		{400, KindEndpoint},
	}

	for _, tt := range tests {
		err := &openai.APIError{HTTPStatusCode: tt.status, Message: "boom"}
		got := Classify(err)
		if got.Kind != tt.want {
			t.Errorf("status %d: expected %s, got %s", tt.status, tt.want, got.Kind)
		}
		if got.StatusCode != tt.status {
			t.Errorf("status %d: expected status code preserved, got %d", tt.status, got.StatusCode)
		}
	}
}

func TestClassify_UnknownError(t *testing.T) {
	got := Classify(errors.New("something odd"))
	if got.Kind != KindUnknown {
		t.Errorf("expected unknown kind, got %s", got.Kind)
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected unknown kind for plain error")
	}
}

func TestError_MessageFormat(t *testing.T) {
	e := &Error{Kind: KindAuth, Message: "authentication failed", StatusCode: 401}
	want := "auth HTTP 401 authentication failed"
	if e.Error() != want {
		t.Errorf("expected %q, got %q", want, e.Error())
	}
}
