package debate

import (
	"context"
	"fmt"
	"sync"

	"github.com/leofalp/parliament/providers/tool"
)

// ToolExecutor answers every pending tool call on the most recent agent
// message. Independent calls fan out concurrently; the patch is returned only
// once all of them have joined, so routing never observes a partial batch.
//
// Tool failure is not node failure: error text is delivered as the result
// content so the calling agent can react to it.
type ToolExecutor struct {
	catalog *tool.Catalog
}

var _ Node = (*ToolExecutor)(nil)

// NewToolExecutor creates the tool execution node backed by the given catalog.
func NewToolExecutor(catalog *tool.Catalog) *ToolExecutor {
	return &ToolExecutor{catalog: catalog}
}

func (e *ToolExecutor) Name() string { return string(TargetTools) }

// Run executes all pending calls and returns one KindToolResult message per
// call, in request order. It never returns an error.
func (e *ToolExecutor) Run(ctx context.Context, state State) (*Patch, error) {
	calls := pendingToolCalls(state)
	if len(calls) == 0 {
		return &Patch{}, nil
	}

	results := make([]Message, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCall) {
			defer wg.Done()
			results[i] = Message{
				Sender:     SenderTool,
				Kind:       KindToolResult,
				Content:    e.invoke(ctx, call),
				ToolCallID: call.ID,
				ToolName:   call.Name,
			}
		}(i, call)
	}
	wg.Wait()

	return &Patch{Messages: results}, nil
}

// invoke runs a single tool call and always returns displayable text.
func (e *ToolExecutor) invoke(ctx context.Context, call ToolCall) string {
	if e.catalog == nil {
		return fmt.Sprintf("Error: no tools are available in this conversation (requested %q).", call.Name)
	}
	callable, ok := e.catalog.Get(call.Name)
	if !ok {
		return fmt.Sprintf("Error: tool %q is not available.", call.Name)
	}
	output, err := callable.Call(ctx, call.Arguments)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return output
}
