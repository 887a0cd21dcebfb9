package agent

import (
	"context"
	"log/slog"

	"SupportChat/internal/cache"
	"SupportChat/internal/llm"
	"SupportChat/internal/session"
)

// AssistantRules is the fixed behavioral rule set given to a model-backed
// assistant. It encodes, per intent branch and per backend status, whether
// to emit a function call, a terminal message, or a continuation prompt.
const AssistantRules = `You are a support assistant that can handle both listing-related queries and brand approval queries.

1. If the user wants listing help:
   - Ask for their user ID, then output: FUNCTION_CALL:get_user_status{"user_id": "<ID>"}
   - After the user status response:
       - If status is "retrying" and auto_retry is true, output the same get_user_status call again with identical parameters.
       - If status is "onboarding", output the response message followed by: TERMINATING chat now. TERMINATE
       - Otherwise output the response message followed by: Please provide your listing ID.
   - When the user provides a listing ID, output: FUNCTION_CALL:get_listing_status{"listing_id": "<ID>"}
   - After the listing status response:
       - If status is "retrying" and auto_retry is true, output the same get_listing_status call again with identical parameters.
       - If status is "active" or "inactive", output the response message followed by: TERMINATE
       - If status is "blocked", output: FUNCTION_CALL:create_support_ticket{"user_id": "<USER_ID>", "listing_id": "<LISTING_ID>", "reason": "Reactivation requested"}
       - If status is "archived" or "rfa", output the response message followed by: TERMINATE
       - If status is "error" with retry_needed false, output the response message verbatim.

2. If the user wants brand approval:
   - Ask for the brand approval request ID, then output: FUNCTION_CALL:get_brand_approval_status{"request_id": "<ID>"}
   - After the brand approval response:
       - If status is "approved", output the response message followed by: TERMINATE
       - If status is "in_progress" or "disapproved" and timeline_hours is 72 or less, output the response message followed by: Please wait while your brand request is processed. TERMINATE
       - If timeline_hours is greater than 72, output: FUNCTION_CALL:create_support_ticket{"user_id": "N/A", "listing_id": "N/A", "reason": "Brand approval follow-up"}
   - After a support ticket response, output the response message followed by: Support ticket <TICKET_ID> created for brand approval. TERMINATE

3. Use the exact FUNCTION_CALL formats above, with nothing before or after the call on its own message.

4. Always end the conversation with TERMINATE when no further steps are needed.`

// LLMAssistant runs the assistant role on an external language model. Any
// capability failure, including timeout, degrades to an apologetic terminal
// message rather than an error: user-visible failures are chat messages.
type LLMAssistant struct {
	client  *llm.Client
	backend string
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewLLMAssistant creates an assistant on the named llm backend.
func NewLLMAssistant(client *llm.Client, backend string, replyCache *cache.Cache, logger *slog.Logger) *LLMAssistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMAssistant{client: client, backend: backend, cache: replyCache, logger: logger}
}

// Role implements Agent.
func (a *LLMAssistant) Role() session.Role {
	return session.RoleAssistant
}

// Produce implements Agent.
func (a *LLMAssistant) Produce(ctx context.Context, sess *session.Session) (string, error) {
	key := cache.Key(sess.Messages)
	if a.cache != nil {
		if reply, ok := a.cache.Get(key); ok {
			a.logger.Info("assistant cache hit", "key", key[:16])
			return reply, nil
		}
	}

	messages := make([]llm.ChatMessage, len(sess.Messages))
	for i, msg := range sess.Messages {
		role := "user"
		if msg.Role == session.RoleAssistant {
			role = "assistant"
		}
		messages[i] = llm.ChatMessage{Role: role, Content: msg.Content}
	}

	reply, err := a.client.Complete(ctx, a.backend, AssistantRules, messages)
	if err != nil {
		a.logger.Warn("assistant capability failed, ending conversation", "backend", a.backend, "error", err)
		return apologyMessage, nil
	}

	if a.cache != nil {
		a.cache.Put(key, reply)
	}
	return reply, nil
}
