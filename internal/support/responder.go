package support

import (
	"strings"
	"unicode"
)

// EscalationPhrase marks a canned reply that hands the conversation to a person.
const EscalationPhrase = "connect you with"

const (
	GreetingText = "Hi there! I'm the support assistant. How can I help you today?"
	FallbackText = "I'm not sure I understand. Let me connect you with a specialist who will get back to you shortly."
)

type cannedReply struct {
	match func(lower string) bool
	reply string
}

// Order matters: the first matching entry wins.
var cannedReplies = []cannedReply{
	{
		match: hasWord("hi", "hello", "hey", "namaste"),
		reply: "Hello! Are you a tenant looking for a place to stay, or an agent managing properties?",
	},
	{
		match: containsAny("maintenance", "repair", "leak", "broken", "plumb"),
		reply: "I'm sorry to hear that. Let me connect you with our maintenance support team right away.",
	},
	{
		match: containsAny("refund", "complaint", "speak to", "talk to", "human"),
		reply: "I understand. Let me connect you with a specialist who can look into this for you.",
	},
	{
		match: containsAny("rent", "payment", "deposit", "invoice"),
		reply: "You can pay rent and review deposits from the Payments section of your dashboard.",
	},
	{
		match: containsAny("paying guest", "pg", "hostel", "room"),
		reply: "We have PG accommodations across the city. Use the search filters to find rooms by budget, meals and amenities.",
	},
	{
		match: containsAny("listing", "list my", "add property", "post property"),
		reply: "Agents can add and edit listings from the Properties tab of the agent dashboard.",
	},
	{
		match: containsAny("visit", "tour", "viewing"),
		reply: "You can schedule a property visit from the listing page using the Book a Visit button.",
	},
	{
		match: containsAny("commission", "leads", "analytics"),
		reply: "Commission and lead reports are available in the agent analytics dashboard.",
	},
	{
		match: containsAny("thank"),
		reply: "You're welcome! Is there anything else I can help with?",
	},
}

// Respond returns the first canned reply matching text.
func Respond(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, c := range cannedReplies {
		if c.match(lower) {
			return c.reply, true
		}
	}
	return "", false
}

// Escalates reports whether a bot reply hands the conversation to a human.
func Escalates(reply string) bool {
	return strings.Contains(strings.ToLower(reply), EscalationPhrase)
}

func hasWord(words ...string) func(string) bool {
	return func(lower string) bool {
		fields := strings.FieldsFunc(lower, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, f := range fields {
			for _, w := range words {
				if f == w {
					return true
				}
			}
		}
		return false
	}
}
