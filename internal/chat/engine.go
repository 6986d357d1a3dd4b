// Package chat implements the per-message orchestration loop: resolve the
// session, build the prompt, drive the model through bounded tool rounds
// and produce the reply text.
package chat

import (
	"context"
	"fmt"

	"github.com/satkam/partsbot/internal/llm"
	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/prompt"
	"github.com/satkam/partsbot/internal/session"
	"github.com/satkam/partsbot/internal/settings"
	"github.com/satkam/partsbot/internal/store"
	"github.com/satkam/partsbot/internal/tools"
)

// Engine orchestrates one conversation turn per inbound message.
// Concurrency-safe across distinct callers; turns for the same phone
// number should be serialized by the transport.
type Engine struct {
	completer llm.Completer
	sessions  *session.Store
	registry  *tools.Registry
	prompts   *prompt.Builder
	settings  *settings.Cache

	model     string
	maxTokens int
	maxRounds int
	toolDefs  []llm.ToolDef
	logger    log.Logger
}

// Config carries the engine's model parameters.
type Config struct {
	Model     string
	MaxTokens int

	// MaxRounds caps the tool rounds within one turn. A turn that is
	// still requesting tools past the cap degrades to the fallback reply.
	MaxRounds int
}

// New creates an engine. Tool definitions are derived once at startup.
func New(completer llm.Completer, sessions *session.Store, registry *tools.Registry,
	prompts *prompt.Builder, cfg *settings.Cache, ecfg Config, logger log.Logger) (*Engine, error) {

	defs, err := tools.Definitions()
	if err != nil {
		return nil, fmt.Errorf("building tool definitions: %w", err)
	}
	if ecfg.MaxRounds <= 0 {
		ecfg.MaxRounds = 8
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{
		completer: completer,
		sessions:  sessions,
		registry:  registry,
		prompts:   prompts,
		settings:  cfg,
		model:     ecfg.Model,
		maxTokens: ecfg.MaxTokens,
		maxRounds: ecfg.MaxRounds,
		toolDefs:  defs,
		logger:    logger,
	}, nil
}

// HandleMessage runs one full turn for an inbound message and returns the
// reply text. Failures inside the turn degrade to the operator-configured
// fallback message; the session context is persisted either way.
func (e *Engine) HandleMessage(ctx context.Context, phone, text string) (string, error) {
	sess, err := e.sessions.ResolveOrCreate(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("resolving session: %w", err)
	}

	cfg := e.settings.Get(ctx)
	history, err := e.sessions.History(ctx, sess.ID, cfg.Int(settings.KeyMaxHistory, settings.DefaultMaxHistory))
	if err != nil {
		// A lost history degrades the prompt, not the turn.
		e.logger.Warn("history unavailable", "session_id", sess.ID, "error", err)
		history = nil
	}

	e.sessions.Append(ctx, sess, store.RoleUser, text)

	reply, err := e.runTurn(ctx, sess, history, text)
	if err != nil {
		e.logger.Error("turn failed", "session_id", sess.ID, "error", err)
		reply = cfg.String(settings.KeyFallbackMessage, settings.DefaultFallbackMessage)
	}

	// Cart mutations survive even a failed turn.
	if err := e.sessions.PersistContext(ctx, sess); err != nil {
		e.logger.Error("failed to persist session context", "session_id", sess.ID, "error", err)
	}

	e.sessions.Append(ctx, sess, store.RoleAssistant, reply)
	return reply, nil
}

// runTurn drives the model through at most maxRounds tool rounds.
func (e *Engine) runTurn(ctx context.Context, sess *session.Session, history []store.Message, text string) (string, error) {
	system := e.prompts.Build(ctx, sess, history)
	messages := []llm.Message{llm.TextMessage(llm.RoleUser, text)}

	for round := 0; round < e.maxRounds; round++ {
		resp, err := e.completer.Complete(ctx, llm.Request{
			Model:     e.model,
			MaxTokens: e.maxTokens,
			System:    system,
			Tools:     e.toolDefs,
			Messages:  messages,
		})
		if err != nil {
			return "", fmt.Errorf("completion round %d: %w", round+1, err)
		}

		if resp.StopReason != llm.StopToolUse {
			return resp.JoinedText(), nil
		}

		uses := resp.ToolUses()
		if len(uses) == 0 {
			return "", fmt.Errorf("round %d: stop_reason tool_use with no tool_use blocks", round+1)
		}

		// The assistant turn goes back verbatim, followed by one user turn
		// carrying a result per requested tool, in request order.
		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

		results := make([]llm.ContentBlock, 0, len(uses))
		for _, use := range uses {
			res := e.registry.Dispatch(ctx, use.Name, use.Input, sess)
			results = append(results, llm.ContentBlock{
				Type:      llm.BlockToolResult,
				ToolUseID: use.ID,
				Content:   res.Encode(),
			})
		}
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: results})
	}

	return "", fmt.Errorf("turn exceeded %d tool rounds", e.maxRounds)
}
