// internal/game/engine.go
//
// Guess evaluation for the duel coordinator.
// Responsibilities:
//   - Score guesses using the classic two-pass Wordle algorithm.
//   - Validate the raw guess shape (5 letters, A–Z).
//
// The scorer is multiset-aware: a repeated letter in the guess is
// credited "present" no more times than the letter's remaining count in
// the target.
package game

// Evaluate scores guess against target. Both must be WordLength
// uppercase letters; callers validate shape first.
//
// Pass 1: mark exact matches as correct and count the remaining
// (non-matched) target letters per letter.
// Pass 2: left to right, for each non-correct guess letter: if there is
// remaining count for that letter, mark present and decrement;
// otherwise mark absent.
func Evaluate(guess, target string) []Mark {
	res := make([]Mark, WordLength)

	// Letter frequency of the non-matched target positions (A–Z).
	var counts [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == target[i] {
			res[i] = MarkCorrect
		} else {
			counts[target[i]-'A']++
		}
	}

	for i := 0; i < WordLength; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		j := int(guess[i] - 'A')
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// AllCorrect reports whether every mark is MarkCorrect.
func AllCorrect(m []Mark) bool {
	for _, x := range m {
		if x != MarkCorrect {
			return false
		}
	}
	return len(m) == WordLength
}

// ValidShape reports whether s is exactly WordLength uppercase A–Z
// letters.
func ValidShape(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
