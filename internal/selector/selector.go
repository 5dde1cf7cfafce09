/*
Package selector chooses the next interview question.

Selection is a strategy so an information-driven variant can replace the
sequential one without touching the session state machine.
*/
package selector

import (
	"sort"
	"strings"

	"github.com/khanglvm/orbit/internal/domain"
)

// Selector picks the next question to ask.
type Selector interface {
	// SelectNext returns the next unanswered question, or false when every
	// catalog entry has been answered.
	SelectNext(catalog []domain.Question, answered []string) (domain.Question, bool)
}

// Sequential walks the catalog in ascending order of the number embedded
// in each question id.
type Sequential struct{}

// NewSequential returns the default selector.
func NewSequential() Sequential { return Sequential{} }

// SelectNext implements Selector.
func (Sequential) SelectNext(catalog []domain.Question, answered []string) (domain.Question, bool) {
	done := make(map[string]struct{}, len(answered))
	for _, id := range answered {
		done[id] = struct{}{}
	}

	for _, q := range Order(catalog) {
		if _, ok := done[q.ID]; !ok {
			return q, true
		}
	}
	return domain.Question{}, false
}

// Order returns a copy of catalog sorted by OrderKey. Equal keys keep their
// catalog order.
func Order(catalog []domain.Question) []domain.Question {
	ordered := make([]domain.Question, len(catalog))
	copy(ordered, catalog)

	keys := make(map[string]Key, len(ordered))
	for _, q := range ordered {
		keys[q.ID] = OrderKey(q.ID)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return keys[ordered[i].ID].Less(keys[ordered[j].ID])
	})
	return ordered
}

// Key is the ordering key of a question id: the first run of ASCII digits,
// compared as an unbounded non-negative integer. The zero Key marks an id
// without digits and sorts after every other key.
type Key struct {
	digits string
}

// OrderKey extracts the first run of ASCII digits in id, without leading
// zeros.
func OrderKey(id string) Key {
	start := strings.IndexFunc(id, isDigit)
	if start < 0 {
		return Key{}
	}

	end := start
	for end < len(id) && isDigit(rune(id[end])) {
		end++
	}

	digits := strings.TrimLeft(id[start:end], "0")
	if digits == "" {
		digits = "0"
	}
	return Key{digits: digits}
}

// HasDigits reports whether the id the key came from contained a digit.
func (k Key) HasDigits() bool { return k.digits != "" }

// String returns the normalized digit run, or "" for ids without digits.
func (k Key) String() string { return k.digits }

// Less orders keys numerically, with digit-less keys last.
func (k Key) Less(o Key) bool {
	switch {
	case !k.HasDigits():
		return false
	case !o.HasDigits():
		return true
	case len(k.digits) != len(o.digits):
		return len(k.digits) < len(o.digits)
	}
	return k.digits < o.digits
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
