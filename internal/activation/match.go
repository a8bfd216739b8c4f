package activation

import (
	"regexp"
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/rcliao/lorebook/internal/model"
)

// Match reports whether any keyword occurs in corpus.
//
// Case-insensitive matching lower-cases both sides. Whole-word mode tests a
// single \b(k1|k2|...)\b alternation of the escaped keywords; substring mode
// tests plain containment. Keywords are compared as given, surrounding
// spaces included; blank ones are dropped, and an empty list never matches.
func Match(corpus string, keywords []string, caseSensitive, wholeWords bool) bool {
	keys := cleanKeywords(keywords)
	if len(keys) == 0 || corpus == "" {
		return false
	}

	if !caseSensitive {
		corpus = strings.ToLower(corpus)
		for i, k := range keys {
			keys[i] = strings.ToLower(k)
		}
	}

	if wholeWords {
		re, err := wholeWordPattern(keys)
		if err != nil {
			return false
		}
		return re.MatchString(corpus)
	}
	return containsAny(corpus, keys)
}

func wholeWordPattern(keys []string) (*regexp.Regexp, error) {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.Compile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}

func containsAny(corpus string, keys []string) bool {
	builder := aho.NewAhoCorasickBuilder(aho.Opts{DFA: true})
	ac := builder.Build(keys)
	return len(ac.FindAll(corpus)) > 0
}

// cleanKeywords drops keywords that are empty or only whitespace. The rest
// are kept verbatim, and the input slice is never modified.
func cleanKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			out = append(out, k)
		}
	}
	return out
}

// Window returns the last depth messages of history, oldest first. A depth
// larger than the history clips to everything available.
func Window(history []model.Message, depth int) []model.Message {
	if depth <= 0 {
		return nil
	}
	if depth >= len(history) {
		return history
	}
	return history[len(history)-depth:]
}

// Corpus joins the text of every message with a single space.
func Corpus(window []model.Message) string {
	texts := make([]string, len(window))
	for i, m := range window {
		texts[i] = m.Text
	}
	return strings.Join(texts, " ")
}
