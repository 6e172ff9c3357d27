// Package router classifies chat messages into an answering strategy and
// resolves whose library the answer may look at.
package router

import (
	"strings"

	"github.com/listenupapp/librarian/internal/domain"
)

// Strategy is an answering strategy.
type Strategy string

// Strategies, in rule order.
const (
	AdminInsights  Strategy = "admin_insights"
	Recommendation Strategy = "recommendation"
	WebLookup      Strategy = "web_lookup"
	HabitAnalysis  Strategy = "habit_analysis"
	SQLFallback    Strategy = "sql_fallback"
)

// Rule matches a lower-cased, trimmed message for a caller.
type Rule struct {
	Name     string
	Strategy Strategy
	Match    func(lower string, caller domain.Caller) bool
}

// Rules are evaluated top-down; the first match wins. SQLFallback is the
// default when none match and has no rule.
var Rules = []Rule{
	{"admin insights", AdminInsights, isInsightsCommand},
	{"recommendation", Recommendation, isRecommendation},
	{"web lookup", WebLookup, isWebLookup},
	{"habit analysis", HabitAnalysis, isHabitAnalysis},
}

// Classify returns the strategy of the first matching rule.
func Classify(message string, caller domain.Caller) Strategy {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, r := range Rules {
		if r.Match(lower, caller) {
			return r.Strategy
		}
	}
	return SQLFallback
}

var insightsPhrases = []string{"insights", "library insights", "admin insights"}

func isInsightsCommand(lower string, caller domain.Caller) bool {
	if !caller.IsAdmin {
		return false
	}
	if strings.HasPrefix(lower, "/insights") {
		return true
	}
	for _, p := range insightsPhrases {
		if lower == p {
			return true
		}
	}
	return false
}

var recommendationKeywords = []string{"recommend", "suggest", "recommendation", "suggestions"}

func isRecommendation(lower string, _ domain.Caller) bool {
	return containsAny(lower, recommendationKeywords) && strings.Contains(lower, "book")
}

var webKeywords = []string{
	"price", "expensive", "cheapest", "cost", "worth", "value",
	"how much does", "how much is",
	"pages", "page count", "how many pages",
	"year published", "publication year", "release year",
	"summary", "synopsis", "plot",
	"rating", "goodreads", "amazon rating",
}

func isWebLookup(lower string, _ domain.Caller) bool {
	return containsAny(lower, webKeywords)
}

var (
	analysisKeywords = []string{"summarize", "summary", "summarise", "analyze", "analyse"}
	contextKeywords  = []string{"reading", "book", "library"}
	habitPhrases     = []string{
		"my reading habits",
		"reading habits",
		"reading patterns",
		"reading style",
		"how do i read",
		"what do i read",
		"analyze my reading",
		"summarize my reading",
	}
)

func isHabitAnalysis(lower string, _ domain.Caller) bool {
	habit := strings.Contains(lower, "habit")
	if containsAny(lower, analysisKeywords) && (habit || containsAny(lower, contextKeywords)) {
		return true
	}
	return habit || containsAny(lower, habitPhrases)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
