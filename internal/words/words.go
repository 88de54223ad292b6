// internal/words/words.go
//
// Word list management for the duel coordinator.
//
// Responsibilities:
//   - Load answer and allowed guess lists from environment-provided files
//     or fall back to the embedded defaults in the assets package.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Supply RandomAnswer, Known, IsAnswer and Stats.
//
// Word Lists:
//   - "answers": canonical secrets (exactly 5 uppercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Initialization behavior (Init):
//  1. If WORDS_ANSWERS_FILE and WORDS_ALLOWED_FILE are both set,
//     load answers from the first and allowed guesses from the second.
//  2. If only WORDS_ALLOWED_FILE is set, load that file and use it for
//     both answers and allowed guesses.
//  3. If neither is set, use the embedded lists from assets.
//
// Constraints:
//   - Words must be 5 alphabetic letters; lists are normalized to uppercase.
//   - Entries of any other shape are dropped at load time.
//   - Initialization runs once (sync.Once).
package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/wordduel/server/assets"
)

const Length = 5

var (
	initOnce   sync.Once
	answers    []string            // canonical secrets
	allowedSet map[string]struct{} // answers ∪ guesses
	answersSet map[string]struct{} // answers only
	initialErr error
)

// Init loads the word lists. Safe to call multiple times; only the first
// call does work. Returns the error of that first initialization.
func Init() error {
	initOnce.Do(func() { initialErr = load() })
	return initialErr
}

func load() error {
	ansPath := os.Getenv("WORDS_ANSWERS_FILE")
	allPath := os.Getenv("WORDS_ALLOWED_FILE")

	var ans, all []string
	var err error

	switch {
	case ansPath != "" && allPath != "":
		if ans, err = readWordFile(ansPath); err != nil {
			return err
		}
		if all, err = readWordFile(allPath); err != nil {
			return err
		}
	case allPath != "":
		if all, err = readWordFile(allPath); err != nil {
			return err
		}
		ans = all
	default:
		if ans, err = assets.AnswersList(); err != nil {
			return err
		}
		if all, err = assets.AllowedList(); err != nil {
			return err
		}
	}

	answers = filterValid(ans)
	if len(answers) == 0 {
		return errors.New("words: no usable answers")
	}

	answersSet = make(map[string]struct{}, len(answers))
	for _, w := range answers {
		answersSet[w] = struct{}{}
	}

	// Guess set always includes the answers.
	allowedSet = make(map[string]struct{}, len(all)+len(answers))
	for _, w := range filterValid(all) {
		allowedSet[w] = struct{}{}
	}
	for _, w := range answers {
		allowedSet[w] = struct{}{}
	}
	return nil
}

// readWordFile reads one word per line, skipping blanks and '#' comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

func filterValid(in []string) []string {
	out := in[:0:0]
	for _, w := range in {
		if WellFormed(w) {
			out = append(out, w)
		}
	}
	return out
}

// WellFormed reports whether s is exactly Length uppercase A–Z letters.
func WellFormed(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// RandomAnswer picks a secret uniformly from the answer list using
// crypto/rand. Init must have succeeded first.
func RandomAnswer() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(answers))))
	if err != nil {
		// crypto/rand failing means the platform is broken; the zeroth
		// answer keeps the game playable.
		return answers[0]
	}
	return answers[n.Int64()]
}

// Known reports whether w is in the local allowed set. Callers should
// already have uppercased w.
func Known(w string) bool {
	_, ok := allowedSet[w]
	return ok
}

// IsAnswer reports whether w is in the canonical answer list.
func IsAnswer(w string) bool {
	_, ok := answersSet[w]
	return ok
}

// Stats returns (answers, allowed) counts for diagnostics.
func Stats() (int, int) {
	return len(answers), len(allowedSet)
}
