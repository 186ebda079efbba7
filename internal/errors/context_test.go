package errors

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID = %q, want req-123", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q, want empty", got)
	}
}

func TestRequestIDOrGenerate(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-456")
	if got := RequestIDOrGenerate(ctx); got != "req-456" {
		t.Errorf("RequestIDOrGenerate = %q, want existing req-456", got)
	}

	minted := RequestIDOrGenerate(context.Background())
	if minted == "" {
		t.Fatal("RequestIDOrGenerate on empty context returned empty ID")
	}
	if again := RequestIDOrGenerate(context.Background()); again == minted {
		t.Errorf("minted IDs should be unique, got %q twice", minted)
	}
}
