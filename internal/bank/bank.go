package bank

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/abhisek/examhelper/internal/quiz"
)

// ErrNotFound is returned when no question matches.
var ErrNotFound = errors.New("bank: question not found")

// ErrEmpty is returned when a random question is requested from an empty bank.
var ErrEmpty = errors.New("bank: no questions")

// Entry is a question together with its key. Answer is the canonical
// correct option text.
type Entry struct {
	Text        string
	Options     []string
	Answer      string
	Explanation string
}

// Question returns the client-facing part of the entry.
func (e Entry) Question() quiz.Question {
	return quiz.Question{Text: e.Text, Options: append([]string(nil), e.Options...)}
}

// Grade evaluates a submitted answer. The canonical option text is the
// expected form; a bare option letter ("B") is accepted as well.
func (e Entry) Grade(answer string) quiz.AnswerResult {
	return quiz.AnswerResult{
		IsCorrect:     e.matches(answer),
		CorrectAnswer: e.Answer,
		Explanation:   e.Explanation,
	}
}

func (e Entry) matches(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == strings.TrimSpace(e.Answer) {
		return true
	}
	if len(answer) != 1 {
		return false
	}
	idx := int(strings.ToUpper(answer)[0]) - 'A'
	return idx >= 0 && idx < len(e.Options) && e.Options[idx] == e.Answer
}

// Bank is a source of questions.
type Bank interface {
	// Random returns a uniformly chosen entry.
	Random(ctx context.Context) (Entry, error)

	// Lookup finds the entry whose text equals text.
	Lookup(ctx context.Context, text string) (Entry, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)
}

// Memory is an in-memory Bank. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	byText  map[string]int
	rng     *rand.Rand
}

var _ Bank = (*Memory)(nil)

// NewMemory builds a bank from entries. Later duplicates of the same
// question text replace earlier ones.
func NewMemory(entries []Entry) *Memory {
	return NewMemoryWithRand(entries, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewMemoryWithRand is NewMemory with an explicit random source.
func NewMemoryWithRand(entries []Entry, rng *rand.Rand) *Memory {
	m := &Memory{byText: make(map[string]int, len(entries)), rng: rng}
	for _, e := range entries {
		if i, ok := m.byText[e.Text]; ok {
			m.entries[i] = e
			continue
		}
		m.byText[e.Text] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m
}

func (m *Memory) Random(_ context.Context) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Entry{}, ErrEmpty
	}
	return m.entries[m.rng.IntN(len(m.entries))], nil
}

func (m *Memory) Lookup(_ context.Context, text string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byText[text]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return m.entries[i], nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// Entries returns a copy of all entries in insertion order.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}
