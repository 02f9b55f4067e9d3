package present

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	outputPolicyOnce sync.Once
	outputPolicy     *bluemonday.Policy
)

// Sanitize passes presenter markup through the output allow-list. Text has
// already been escaped at this point; the policy only strips elements and
// attributes the presenter never emits.
func Sanitize(markup string) string {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(outputSanitizer().Sanitize(trimmed))
}

func outputSanitizer() *bluemonday.Policy {
	outputPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("div", "p", "ul", "li", "b", "pre", "span", "h2", "small")
		policy.AllowAttrs("class").OnElements("div", "p", "ul", "li", "pre", "span", "h2", "small")
		outputPolicy = policy
	})
	return outputPolicy
}
