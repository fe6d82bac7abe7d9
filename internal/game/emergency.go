package game

import (
	"fmt"
	"strings"
)

var emergencyTemplates = []func(domain string, n int) string{
	func(d string, _ int) string { return fmt.Sprintf("Is this %s considered popular?", d) },
	func(d string, _ int) string { return fmt.Sprintf("Is this %s something most people know about?", d) },
	func(d string, _ int) string { return fmt.Sprintf("Is this %s commonly used?", d) },
	func(d string, n int) string { return fmt.Sprintf("Has this %s existed for more than %d years?", d, 10+n) },
	func(d string, _ int) string { return fmt.Sprintf("Is this %s found in many countries?", d) },
}

// EmergencyQuestion returns a templated question for domain that is not in
// asked, ignoring case. n is the number of questions already answered and picks the
// starting template. It reports false when every variant has been asked.
func EmergencyQuestion(domain string, n int, asked []string) (string, bool) {
	seen := make(map[string]bool, len(asked))
	for _, a := range asked {
		seen[strings.ToLower(a)] = true
	}
	k := len(emergencyTemplates)
	for i := 0; i < k; i++ {
		q := emergencyTemplates[(n+i)%k](domain, n)
		if !seen[strings.ToLower(q)] {
			return q, true
		}
	}
	return "", false
}

var defaultGuesses = map[string]string{
	"animal":     "Dog",
	"food":       "Pizza",
	"movie":      "Avatar",
	"book":       "Harry Potter",
	"sport":      "Soccer",
	"country":    "France",
	"car":        "Toyota",
	"technology": "Smartphone",
	"game":       "Chess",
}

// DefaultGuess is the last-resort guess for a domain.
func DefaultGuess(domain string) string {
	if g, ok := defaultGuesses[strings.ToLower(domain)]; ok {
		return g
	}
	return "popular " + domain
}
