package quizgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"wikiquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel scripts one result per call: a non-nil error at index i fails
// call i, otherwise the response at index i is returned.
type fakeModel struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	idx := f.calls
	f.calls++

	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tc.Text)
			}
		}
	}

	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}

	response := ""
	if idx < len(f.responses) {
		response = f.responses[idx]
	} else if len(f.responses) > 0 {
		response = f.responses[len(f.responses)-1]
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: response}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func newTestGenerator(model llms.Model) (*Generator, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	g := &Generator{
		llm:                   model,
		modelName:             "test-model",
		temperature:           0.7,
		maxRetries:            3,
		initialBackoff:        2 * time.Second,
		callTimeout:           time.Minute,
		maxArticleChars:       30000,
		maxSupplementAttempts: 3,
		sleep: func(d time.Duration) {
			*sleeps = append(*sleeps, d)
		},
	}
	return g, sleeps
}

func TestClassifyModelError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil error", nil, false},
		{"rate limited", errors.New("googleapi: Error 429: quota exceeded"), true},
		{"service unavailable", errors.New("rpc error: code 503"), true},
		{"overloaded", errors.New("the model is Overloaded, try again"), true},
		{"invalid key", errors.New("API key not valid"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, classifyModelError(tt.err))
		})
	}
}

func TestGenerateWithRetry_TransientThenSuccess(t *testing.T) {
	overloaded := errors.New("googleapi: Error 503: overloaded")
	model := &fakeModel{
		errs:      []error{overloaded, overloaded, nil},
		responses: []string{"", "", "recovered"},
	}
	g, sleeps := newTestGenerator(model)

	got, err := g.generateWithRetry(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 3, model.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *sleeps)
}

func TestGenerateWithRetry_FatalFailsImmediately(t *testing.T) {
	fatal := errors.New("API key not valid")
	model := &fakeModel{errs: []error{fatal}}
	g, sleeps := newTestGenerator(model)

	_, err := g.generateWithRetry(context.Background(), "prompt")
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, model.calls)
	assert.Empty(t, *sleeps)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeModelFatal, domainErr.Code)
}

func TestGenerateWithRetry_BudgetExhausted(t *testing.T) {
	overloaded := errors.New("429 resource exhausted")
	model := &fakeModel{errs: []error{overloaded, overloaded, overloaded}}
	g, sleeps := newTestGenerator(model)

	_, err := g.generateWithRetry(context.Background(), "prompt")
	assert.ErrorIs(t, err, overloaded)
	assert.Equal(t, 3, model.calls)
	// No sleep after the final attempt
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *sleeps)

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeModelFatal, domainErr.Code)
}
