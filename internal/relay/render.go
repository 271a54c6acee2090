package relay

import (
	"strings"

	"multiai-bot/internal/domain"
)

// Render formats an aggregate result as one labeled block per service:
// "<name>: <text>" on success, "<name>: [error] <reason>" on failure.
// Blocks appear in configuration order separated by blank lines.
func Render(result domain.AggregateResult) string {
	blocks := make([]string, 0, len(result))
	for _, o := range result {
		if o.OK {
			blocks = append(blocks, o.Service+": "+o.Text)
		} else {
			blocks = append(blocks, o.Service+": [error] "+o.Reason)
		}
	}
	return strings.Join(blocks, "\n\n")
}
