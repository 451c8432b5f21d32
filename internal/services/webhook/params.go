package webhook

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultSessionID = "default-session"

// numberWords maps spoken quantity words onto values for removal requests
var numberWords = map[string]int{
	"one": 1, "a": 1, "an": 1,
	"two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

var digitPattern = regexp.MustCompile(`\b\d+\b`)

// extractSessionID pulls the session id out of a Dialogflow session path like
// "projects/<p>/agent/sessions/<session_id>".
func extractSessionID(sessionPath string) string {
	if sessionPath == "" {
		return defaultSessionID
	}
	if i := strings.LastIndex(sessionPath, "/"); i >= 0 {
		return sessionPath[i+1:]
	}
	return sessionPath
}

// extractFoodItems returns the requested item names. The raw spoken values in
// "food-item.original" match the menu better than the extracted entity
// values, so they are preferred and title-cased ("chicken pizza" ->
// "Chicken Pizza").
func extractFoodItems(params map[string]interface{}) []string {
	if original := stringList(params["food-item.original"]); len(original) > 0 {
		caser := cases.Title(language.English)
		for i, item := range original {
			original[i] = caser.String(item)
		}
		return original
	}
	return stringList(params["food-item"])
}

// extractQuantities returns the "number" parameter values as integers
func extractQuantities(params map[string]interface{}) []int {
	return intList(params["number"])
}

// extractOrderID returns the first "number" parameter value, or 0
func extractOrderID(params map[string]interface{}) int64 {
	values := intList(params["number"])
	if len(values) == 0 {
		return 0
	}
	return int64(values[0])
}

// parseRemovalQuantities recovers explicit removal quantities from the raw
// query text. A quantity word ("remove two pizzas") or digit ("remove 2
// pizzas") makes the removal a decrement; anything else, including "remove
// all", means whole-line removal and returns nil.
func parseRemovalQuantities(queryText string) []int {
	queryLower := strings.ToLower(queryText)
	if strings.Contains(queryLower, "remove all") {
		return nil
	}

	for _, word := range strings.Fields(queryLower) {
		if value, ok := numberWords[strings.Trim(word, ".,!?")]; ok {
			return []int{value}
		}
	}

	var quantities []int
	for _, match := range digitPattern.FindAllString(queryText, -1) {
		if value, err := strconv.Atoi(match); err == nil {
			quantities = append(quantities, value)
		}
	}
	return quantities
}

// stringList normalizes a webhook parameter into a list of strings. The
// dialogue engine sends either a single value or a list.
func stringList(value interface{}) []string {
	switch v := value.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		var items []string
		for _, entry := range v {
			if s, ok := entry.(string); ok && s != "" {
				items = append(items, s)
			}
		}
		return items
	default:
		return nil
	}
}

// intList normalizes a webhook parameter into a list of ints. JSON numbers
// arrive as float64; quantities sometimes arrive as numeric strings.
func intList(value interface{}) []int {
	switch v := value.(type) {
	case float64:
		return []int{int(v)}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return []int{n}
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return []int{int(f)}
		}
		return nil
	case []interface{}:
		var values []int
		for _, entry := range v {
			values = append(values, intList(entry)...)
		}
		return values
	default:
		return nil
	}
}
