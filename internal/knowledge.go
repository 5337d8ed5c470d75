package internal

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrInvalidKey = errors.New("invalid key")
	ErrStoreFull  = errors.New("knowledge store is full")
)

// Key is a normalized question: case-folded and trimmed.
type Key string

func NewKey(s string) (Key, error) {
	k := NormalizeKey(s)
	if k == "" {
		return "", ErrInvalidKey
	}
	return k, nil
}

func NormalizeKey(s string) Key {
	return Key(strings.ToLower(strings.TrimSpace(s)))
}

func (k Key) String() string {
	return string(k)
}

type KnowledgeEntry struct {
	Key    Key
	Answer string
}

// KeywordRule maps a substring of the question onto a stored key.
// Rules are evaluated in slice order and the first hit wins.
type KeywordRule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Key     string `yaml:"key" json:"key"`
}

// KnowledgeStore is the in-memory question/answer mapping shared by all requests.
// Concurrent upserts to the same key are last-writer-wins.
type KnowledgeStore struct {
	mu         sync.RWMutex
	entries    map[Key]string
	rules      []KeywordRule
	maxEntries int
}

type StoreOption func(*KnowledgeStore)

// WithMaxEntries bounds the number of distinct keys. Zero means unbounded.
func WithMaxEntries(n int) StoreOption {
	return func(s *KnowledgeStore) {
		s.maxEntries = n
	}
}

func WithRules(rules []KeywordRule) StoreOption {
	return func(s *KnowledgeStore) {
		s.rules = normalizeRules(rules)
	}
}

func NewKnowledgeStore(seed []KnowledgeEntry, opts ...StoreOption) *KnowledgeStore {
	s := &KnowledgeStore{
		entries: make(map[Key]string, len(seed)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, e := range seed {
		k := NormalizeKey(e.Key.String())
		if k == "" {
			continue
		}
		s.entries[k] = e.Answer
	}
	return s
}

func (s *KnowledgeStore) Lookup(question string) (string, bool) {
	k := NormalizeKey(question)
	if k == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	answer, ok := s.entries[k]
	return answer, ok
}

// KeywordLookup returns the answer for the first rule whose pattern occurs in text.
// Priority is rule order, not position in the text.
func (s *KnowledgeStore) KeywordLookup(text string) (string, bool) {
	lower := strings.ToLower(text)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		if rule.Pattern == "" || !strings.Contains(lower, rule.Pattern) {
			continue
		}
		if answer, ok := s.entries[Key(rule.Key)]; ok {
			return answer, true
		}
	}
	return "", false
}

// Upsert stores answer under key and returns the entry count afterwards.
func (s *KnowledgeStore) Upsert(key Key, answer string) (int, error) {
	k := NormalizeKey(key.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[k]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		return len(s.entries), ErrStoreFull
	}
	s.entries[k] = answer
	return len(s.entries), nil
}

func (s *KnowledgeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *KnowledgeStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k.String()] = v
	}
	return out
}

func (s *KnowledgeStore) Rules() []KeywordRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]KeywordRule, len(s.rules))
	copy(out, s.rules)
	return out
}

func (s *KnowledgeStore) SetRules(rules []KeywordRule) {
	normalized := normalizeRules(rules)

	s.mu.Lock()
	s.rules = normalized
	s.mu.Unlock()
}

func normalizeRules(rules []KeywordRule) []KeywordRule {
	out := make([]KeywordRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, KeywordRule{
			Pattern: strings.ToLower(r.Pattern),
			Key:     NormalizeKey(r.Key).String(),
		})
	}
	return out
}
