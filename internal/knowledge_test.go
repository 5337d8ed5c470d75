package internal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	k, err := NewKey("  What IS OSPF?  ")
	require.NoError(t, err)
	assert.Equal(t, Key("what is ospf?"), k)

	_, err = NewKey("   ")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLookupIsCaseAndSpaceInsensitive(t *testing.T) {
	s := NewKnowledgeStore([]KnowledgeEntry{{Key: "hello", Answer: "hi"}})

	for _, q := range []string{"hello", "HELLO", "  Hello  ", "hElLo\n"} {
		answer, ok := s.Lookup(q)
		assert.True(t, ok, q)
		assert.Equal(t, "hi", answer)
	}

	_, ok := s.Lookup("hello there")
	assert.False(t, ok)
	_, ok = s.Lookup("")
	assert.False(t, ok)
}

func TestSeedKeysAreNormalized(t *testing.T) {
	s := NewKnowledgeStore([]KnowledgeEntry{
		{Key: " MPLS ", Answer: "labels"},
		{Key: "  ", Answer: "dropped"},
	})

	assert.Equal(t, 1, s.Len())
	answer, ok := s.Lookup("mpls")
	assert.True(t, ok)
	assert.Equal(t, "labels", answer)
}

func TestKeywordLookupRuleOrderWins(t *testing.T) {
	s := NewKnowledgeStore([]KnowledgeEntry{
		{Key: "bgp", Answer: "bgp answer"},
		{Key: "ospf", Answer: "ospf answer"},
	}, WithRules([]KeywordRule{
		{Pattern: "ospf", Key: "ospf"},
		{Pattern: "bgp", Key: "bgp"},
	}))

	// bgp appears first in the text but ospf is declared first.
	answer, ok := s.KeywordLookup("bgp vs OSPF, which is better?")
	require.True(t, ok)
	assert.Equal(t, "ospf answer", answer)
}

func TestKeywordLookupSkipsRulesWithoutEntry(t *testing.T) {
	s := NewKnowledgeStore([]KnowledgeEntry{{Key: "vlan", Answer: "vlan answer"}},
		WithRules([]KeywordRule{
			{Pattern: "trunk", Key: "missing"},
			{Pattern: "vlan", Key: "vlan"},
		}))

	answer, ok := s.KeywordLookup("vlan trunk config")
	require.True(t, ok)
	assert.Equal(t, "vlan answer", answer)

	_, ok = s.KeywordLookup("nothing relevant")
	assert.False(t, ok)
}

func TestUpsert(t *testing.T) {
	s := NewKnowledgeStore(nil)

	n, err := s.Upsert("MPLS", "first")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Upsert("mpls", "second")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "overwrite must not grow the store")

	answer, _ := s.Lookup("Mpls")
	assert.Equal(t, "second", answer)
}

func TestUpsertMaxEntries(t *testing.T) {
	s := NewKnowledgeStore([]KnowledgeEntry{
		{Key: "a", Answer: "1"},
		{Key: "b", Answer: "2"},
		{Key: "c", Answer: "3"},
	}, WithMaxEntries(2))

	// seed bypasses the bound
	assert.Equal(t, 3, s.Len())

	_, err := s.Upsert("d", "4")
	assert.ErrorIs(t, err, ErrStoreFull)

	n, err := s.Upsert("a", "updated")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewKnowledgeStore([]KnowledgeEntry{{Key: "dns", Answer: "names"}})

	snap := s.Snapshot()
	snap["dns"] = "tampered"
	snap["new"] = "x"

	want := map[string]string{"dns": "names"}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSetRulesNormalizes(t *testing.T) {
	s := NewKnowledgeStore(nil)
	s.SetRules([]KeywordRule{{Pattern: "OSPF", Key: " OSPF "}})

	want := []KeywordRule{{Pattern: "ospf", Key: "ospf"}}
	if diff := cmp.Diff(want, s.Rules()); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentUpsertAndLookup(t *testing.T) {
	s := NewKnowledgeStore(DefaultKnowledge, WithRules(DefaultKeywordRules))
	base := s.Len()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Upsert(Key(fmt.Sprintf("topic %d", i)), "answer")
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Lookup("ospf")
			_, _ = s.KeywordLookup("what is a vlan")
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, base+50, s.Len())
}
