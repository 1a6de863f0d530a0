package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// rule maps trigger keywords to candidate responses. Responses listed in
// dynamic are rendered against the current time on every request.
type rule struct {
	keywords  []string
	responses []string
	dynamic   []func(now time.Time) string
	priority  int
}

var rules = []rule{
	{
		keywords: []string{"hello", "hi", "hey", "greetings", "howdy", "hola"},
		responses: []string{
			"Hello there! How can I help you today?",
			"Hi! Great to see you!",
			"Hey! What's on your mind?",
		},
		priority: 1,
	},
	{
		keywords: []string{"bye", "goodbye", "see you", "later", "farewell"},
		responses: []string{
			"Goodbye! Have a wonderful day!",
			"See you later! Take care!",
			"Farewell! Until next time!",
		},
		priority: 1,
	},
	{
		keywords: []string{"help", "assist", "support", "guide"},
		responses: []string{
			"I'm here to help! What do you need assistance with?",
			"Need help? Just ask me anything!",
		},
		priority: 2,
	},
	{
		keywords: []string{"thanks", "thank you", "appreciate", "grateful"},
		responses: []string{
			"You're welcome! Happy to help!",
			"My pleasure! Anything else?",
		},
		priority: 1,
	},
	{
		keywords: []string{"joke", "funny", "laugh", "humor"},
		responses: []string{
			"Why don't scientists trust atoms? Because they make up everything!",
			"What do you call a fake noodle? An impasta!",
			"Why did the scarecrow win an award? He was outstanding in his field!",
		},
		priority: 2,
	},
	{
		keywords: []string{"time", "date", "today", "now"},
		dynamic: []func(now time.Time) string{
			func(now time.Time) string {
				return "The current server time is " + now.Format("1/2/2006, 3:04:05 PM")
			},
			func(now time.Time) string {
				return "Today is " + now.Format("Monday, January 2, 2006")
			},
		},
		priority: 2,
	},
	{
		keywords: []string{"name", "who are you", "what are you", "introduce"},
		responses: []string{
			"I'm MiniChat's RuleBasedEngine! I match keywords to give you responses.",
			"I'm a simple rule-based chatbot, part of the MiniChat v2 system!",
		},
		priority: 3,
	},
}

var fallbackResponses = []string{
	"Interesting! Tell me more about that.",
	"I'm not sure I understand, but I'm listening!",
	"That's an intriguing topic. Could you elaborate?",
	"Fascinating! What else would you like to discuss?",
}

// RuleBasedEngine matches keywords against a fixed ruleset and answers with a
// canned response, falling back to generic prompts when nothing matches.
type RuleBasedEngine struct {
	mu  sync.Mutex // guards rnd, which is not safe for concurrent use
	rnd *rand.Rand
}

// NewRuleBasedEngine creates a rule-based engine.
func NewRuleBasedEngine() *RuleBasedEngine {
	return &RuleBasedEngine{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Name returns the engine name.
func (e *RuleBasedEngine) Name() string {
	return "RuleBasedEngine"
}

// GenerateReply picks a response from the highest-priority matching rule.
func (e *RuleBasedEngine) GenerateReply(ctx context.Context, message string, mode models.Mode) (string, error) {
	lower := strings.ToLower(message)

	var matching []rule
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				matching = append(matching, r)
				break
			}
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].priority > matching[j].priority
	})

	hadMatch := len(matching) > 0
	var base string
	if hadMatch {
		base = e.pickResponse(matching[0])
	} else {
		base = e.pick(fallbackResponses)
	}

	if mode == models.ModeSlow {
		return e.slowReply(message, base, hadMatch), nil
	}
	return base, nil
}

func (e *RuleBasedEngine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(n)
}

// pick returns a random item from the list.
func (e *RuleBasedEngine) pick(items []string) string {
	return items[e.intn(len(items))]
}

// pickResponse returns one of the rule's responses at random, rendering
// dynamic responses against the current time.
func (e *RuleBasedEngine) pickResponse(r rule) string {
	i := e.intn(len(r.responses) + len(r.dynamic))
	if i < len(r.responses) {
		return r.responses[i]
	}
	return r.dynamic[i-len(r.responses)](time.Now())
}

// matchedKeywords lists every keyword found in the message.
func matchedKeywords(message string) []string {
	lower := strings.ToLower(message)
	var matched []string
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
	}
	return matched
}

// slowReply appends a message analysis footer for slow mode.
func (e *RuleBasedEngine) slowReply(original, base string, hadMatch bool) string {
	matched := matchedKeywords(original)

	ruleLine := "No (used fallback)"
	if hadMatch {
		ruleLine = "Yes"
	}
	keywordLine := "None from my ruleset"
	if len(matched) > 0 {
		keywordLine = strings.Join(matched, ", ")
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n**Message Analysis**")
	fmt.Fprintf(&b, "\n- Characters: %d", len(original))
	fmt.Fprintf(&b, "\n- Words: %d", len(strings.Fields(original)))
	fmt.Fprintf(&b, "\n- Rule matched: %s", ruleLine)
	b.WriteString("\n\n**Keywords Detected**")
	fmt.Fprintf(&b, "\n- %s", keywordLine)
	fmt.Fprintf(&b, "\n\nProcessed at: %s", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("\n\n---")
	b.WriteString("\nThis extended response demonstrates the slow mode feature.")
	return b.String()
}
