package relay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"multiai-bot/internal/domain"
)

func TestRender_MixedOutcomes(t *testing.T) {
	result := domain.AggregateResult{
		domain.Success("Gemini AI", "The answer is 42."),
		domain.Failure("Together.ai", "timeout"),
	}
	require.Equal(t,
		"Gemini AI: The answer is 42.\n\nTogether.ai: [error] timeout",
		Render(result))
}

func TestRender_Empty(t *testing.T) {
	require.Equal(t, "", Render(nil))
	require.Equal(t, "", Render(domain.AggregateResult{}))
}

func TestRender_SingleService(t *testing.T) {
	require.Equal(t, "Gemini AI: hello", Render(domain.AggregateResult{
		domain.Success("Gemini AI", "hello"),
	}))
}
