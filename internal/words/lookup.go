// internal/words/lookup.go
//
// Guess validity lookup: local allowed set first, then an external
// dictionary API as fallback for words the lists don't carry. The
// external call is fail-closed — any transport error, timeout or
// non-200 response means "not a valid word", never a user-facing error.
package words

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultDictionaryAPI = "https://api.dictionaryapi.dev/api/v2/entries/en/%s"

// Lookup answers "is this a guessable word?" for the game engine.
type Lookup interface {
	Valid(ctx context.Context, word string) bool
}

// Checker is the production Lookup: embedded/allowed lists backed by a
// dictionary HTTP API keyed by the lowercase word.
type Checker struct {
	client *http.Client
	apiURL string // fmt pattern with one %s verb for the word
}

// NewChecker builds a Checker. apiURL may be empty to use the default
// dictionary endpoint; it must contain a single %s for the word.
func NewChecker(apiURL string) *Checker {
	if apiURL == "" {
		apiURL = defaultDictionaryAPI
	}
	return &Checker{
		client: &http.Client{Timeout: 4 * time.Second},
		apiURL: apiURL,
	}
}

// Valid reports whether word (uppercase, 5 letters) is guessable.
// The local set wins without any network traffic; unknown words fall
// through to the dictionary API.
func (c *Checker) Valid(ctx context.Context, word string) bool {
	if !WellFormed(word) {
		return false
	}
	if Known(word) {
		return true
	}

	url := fmt.Sprintf(c.apiURL, strings.ToLower(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// The dictionary API 404s for unknown words and 200s with entries
	// for known ones; the body is not needed.
	return resp.StatusCode == http.StatusOK
}
