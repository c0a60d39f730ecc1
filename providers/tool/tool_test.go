package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type echoInput struct {
	Text   string `json:"text" jsonschema:"description=Text to echo back"`
	Repeat int    `json:"repeat,omitempty"`
}

type echoOutput struct {
	Echoed string `json:"echoed"`
}

func newEchoTool() *Tool[echoInput, echoOutput] {
	return NewTool("Echo", func(_ context.Context, input echoInput) (echoOutput, error) {
		repeat := input.Repeat
		if repeat <= 0 {
			repeat = 1
		}
		return echoOutput{Echoed: strings.Repeat(input.Text, repeat)}, nil
	}, WithDescription("Echoes the given text."))
}

func TestNewToolDerivesSchema(t *testing.T) {
	echo := newEchoTool()

	info := echo.ToolInfo()
	if info.Name != "Echo" {
		t.Errorf("name = %q, want %q", info.Name, "Echo")
	}
	if info.Description != "Echoes the given text." {
		t.Errorf("description = %q", info.Description)
	}
	if info.Parameters == nil {
		t.Fatal("parameter schema is nil")
	}
	if info.Parameters.Properties == nil {
		t.Fatal("parameter schema has no properties")
	}
	if _, ok := info.Parameters.Properties.Get("text"); !ok {
		t.Error("schema missing property 'text'")
	}
}

func TestToolCall(t *testing.T) {
	echo := newEchoTool()

	t.Run("valid input", func(t *testing.T) {
		out, err := echo.Call(context.Background(), `{"text":"ab","repeat":2}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != `{"echoed":"abab"}` {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("malformed input gets repaired", func(t *testing.T) {
		out, err := echo.Call(context.Background(), `{text: 'hi'}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != `{"echoed":"hi"}` {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("function error is wrapped with tool name", func(t *testing.T) {
		failing := NewTool("Broken", func(_ context.Context, _ echoInput) (echoOutput, error) {
			return echoOutput{}, errors.New("boom")
		})
		_, err := failing.Call(context.Background(), `{}`)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "Broken") {
			t.Errorf("error %q does not mention tool name", err)
		}
	})
}

func TestCatalog(t *testing.T) {
	echo := newEchoTool()
	catalog := NewCatalogWithTools(echo)

	if catalog.Size() != 1 {
		t.Fatalf("size = %d, want 1", catalog.Size())
	}
	if !catalog.Has("echo") {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := catalog.Get("ECHO"); !ok {
		t.Error("Get should be case-insensitive")
	}
	if _, ok := catalog.Get("missing"); ok {
		t.Error("Get returned a tool for an unknown name")
	}

	descriptions := catalog.Descriptions()
	if len(descriptions) != 1 || descriptions[0].Name != "Echo" {
		t.Errorf("descriptions = %+v", descriptions)
	}
}
