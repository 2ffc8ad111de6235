package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/pkg/llm"
	"github.com/taskhive/backend/repository"
)

const (
	recentTaskWindow    = 10
	priorityMaxTokens   = 10
	suggestionMaxTokens = 500

	suggestionSystemPrompt = "You are an AI assistant helping users manage their tasks. " +
		"Based on the user's request and their task history, provide helpful suggestions " +
		"for task management. Be concise and practical."
)

// Completer is what the use case needs from the model provider.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// UseCase wraps single-shot completion calls for priority suggestion and
// free-text task advice.
type UseCase struct {
	model  Completer
	tasks  repository.TaskRepository
	cache  repository.SuggestionCache
	logger *zap.Logger
}

func New(model Completer, tasks repository.TaskRepository, cache repository.SuggestionCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		model:  model,
		tasks:  tasks,
		cache:  cache,
		logger: logger,
	}
}

// SuggestPriority asks the model for a one-word priority. Anything outside
// the enumeration, and any provider failure, degrades to medium rather than
// surfacing an error; only a missing API key is reported.
func (uc *UseCase) SuggestPriority(ctx context.Context, title, description, dueDate string) (domain.TaskPriority, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.NewValidationError("task title is required")
	}
	if !uc.model.Configured() {
		return "", domain.NewError(domain.ErrCodeUnavailable, "ai features are not configured")
	}

	if description == "" {
		description = "No description"
	}
	if dueDate == "" {
		dueDate = "No due date"
	}

	prompt := fmt.Sprintf(`Analyze this task and suggest a priority level (low, medium, or high).
Task Title: %s
Description: %s
Due Date: %s

Consider factors like urgency, importance, and deadlines. Respond with only one word: low, medium, or high.`,
		title, description, dueDate)

	text, err := uc.model.Complete(ctx, "", prompt, priorityMaxTokens)
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			return "", domain.NewError(domain.ErrCodeUnavailable, "ai features are not configured")
		}
		uc.logger.Warn("priority suggestion failed, defaulting to medium", zap.Error(err))
		return domain.PriorityMedium, nil
	}

	priority := domain.TaskPriority(strings.ToLower(strings.TrimSpace(text)))
	if !domain.ValidPriority(priority) {
		priority = domain.PriorityMedium
	}
	return priority, nil
}

// Suggest produces free-text advice grounded in the owner's recent tasks.
// Responses are cached per owner and prompt.
func (uc *UseCase) Suggest(ctx context.Context, ownerID, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", domain.NewValidationError("prompt is required")
	}
	if !uc.model.Configured() {
		return "", domain.NewError(domain.ErrCodeUnavailable, "ai features are not configured")
	}

	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, ownerID, prompt); err != nil {
			uc.logger.Warn("suggestion cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	recent, err := uc.tasks.List(ctx, repository.TaskFilter{OwnerID: ownerID, Limit: recentTaskWindow})
	if err != nil {
		return "", err
	}

	userPrompt := fmt.Sprintf("Context: %s\n\nUser request: %s\n\nProvide helpful task management suggestions:",
		taskContext(recent), prompt)

	suggestion, err := uc.model.Complete(ctx, suggestionSystemPrompt, userPrompt, suggestionMaxTokens)
	if err != nil {
		if errors.Is(err, llm.ErrNoAPIKey) {
			return "", domain.NewError(domain.ErrCodeUnavailable, "ai features are not configured")
		}
		return "", domain.WrapError(domain.ErrCodeInternal, "generate suggestions", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, ownerID, prompt, suggestion); err != nil {
			uc.logger.Warn("suggestion cache write failed", zap.Error(err))
		}
	}
	return suggestion, nil
}

func taskContext(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return "User has no recent tasks."
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "User's recent tasks:")
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- %s (%s priority, %s)", t.Title, t.Priority, t.Status))
	}
	return strings.Join(lines, "\n")
}
