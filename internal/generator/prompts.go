package generator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Turn is one answered question, as shown to the model.
type Turn struct {
	Question string
	Answer   string
}

const questionRule = "The question must start with 'Is', 'Are', 'Does', 'Do', 'Can', 'Has', or 'Have'."

func history(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "Q: %s A: %s. ", t.Question, t.Answer)
	}
	return b.String()
}

// QuestionPrompt builds the prompt asking for the next yes/no question.
func QuestionPrompt(domain string, turns []Turn) string {
	if len(turns) == 0 {
		return fmt.Sprintf("Ask a single yes/no question to identify or to guess a %s. %s", domain, questionRule)
	}
	return fmt.Sprintf("Based on these previous questions and answers: %s Ask a new yes/no question to identify or to guess a %s. %s",
		history(turns), domain, questionRule)
}

// GuessPrompt builds the prompt asking for a final guess.
func GuessPrompt(domain string, turns []Turn) string {
	return fmt.Sprintf("Based on these yes/no questions and answers about a %s: %s What specific %s is it? Just Name the exact %s:",
		domain, history(turns), domain, domain)
}

var questionStarters = map[string]bool{
	"is": true, "are": true, "does": true, "do": true, "can": true,
	"has": true, "have": true, "was": true, "were": true, "will": true,
	"would": true, "should": true, "could": true,
}

var suspiciousFragments = []string{"http", "www", ".com", ".org", ".net", "video", "watch", "youtube"}

// ValidQuestion reports whether q is a plausible yes/no question.
func ValidQuestion(q string) bool {
	if len(q) < 5 || !strings.HasSuffix(q, "?") {
		return false
	}
	lower := strings.ToLower(q)
	for _, s := range suspiciousFragments {
		if strings.Contains(lower, s) {
			return false
		}
	}
	fields := strings.Fields(lower)
	return len(fields) > 0 && questionStarters[fields[0]]
}

// CleanQuestion extracts the question from raw model output: the first
// line ending in '?', without markdown emphasis or quotes.
func CleanQuestion(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	pick := ""
	for _, line := range lines {
		line = trimDecoration(line)
		if strings.HasSuffix(line, "?") {
			pick = line
			break
		}
	}
	if pick == "" && len(lines) > 0 {
		pick = trimDecoration(lines[0])
	}
	return pick
}

// CleanGuess extracts an entity name from raw model output and
// capitalizes it.
func CleanGuess(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = trimDecoration(line)
	line = strings.TrimRight(line, ".!")
	return Capitalize(strings.TrimSpace(line))
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func trimDecoration(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_`\"'"))
}
