package support

import "strings"

type classifyRule struct {
	match  func(text string) bool
	result UserType
}

// Explicit self-identification wins over keyword counting.
var explicitRules = []classifyRule{
	{match: containsAny("tenant", "renter"), result: UserTenant},
	{match: containsAny("agent", "broker", "realtor"), result: UserAgent},
}

var tenantKeywords = []string{
	"rent", "lease", "maintenance", "repair", "deposit", "room", "pg",
	"flat", "apartment", "landlord", "move in", "roommate",
}

var agentKeywords = []string{
	"listing", "commission", "client", "lead", "buyer", "seller",
	"property management", "list my", "inventory", "dashboard analytics",
}

// Classify infers who is writing from free text.
func Classify(text string) UserType {
	lower := strings.ToLower(text)

	for _, r := range explicitRules {
		if r.match(lower) {
			return r.result
		}
	}

	tenantHits := countMatches(lower, tenantKeywords)
	agentHits := countMatches(lower, agentKeywords)

	switch {
	case tenantHits > 0 && agentHits == 0:
		return UserTenant
	case agentHits > 0 && tenantHits == 0:
		return UserAgent
	default:
		return UserUnknown
	}
}

// Reclassify keeps the first non-unknown classification of a conversation.
func Reclassify(prev UserType, text string) UserType {
	if prev != "" && prev != UserUnknown {
		return prev
	}
	return Classify(text)
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

func containsAny(subs ...string) func(string) bool {
	return func(lower string) bool {
		for _, s := range subs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}
