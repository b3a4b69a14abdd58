package textstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyTableCounts(t *testing.T) {
	table := NewFrequencyTable()
	table.Add("the", "spider", "the", "web", "the")

	assert.Equal(t, 3, table.Count("the"))
	assert.Equal(t, 1, table.Count("spider"))
	assert.Equal(t, 0, table.Count("absent"))
	assert.Equal(t, 5, table.Total())
}

func TestFrequencyTableEmpty(t *testing.T) {
	table := NewFrequencyTable()

	assert.Empty(t, table)
	assert.Equal(t, 0, table.Count("anything"))
	assert.Nil(t, table.Top(10))
}

func TestMergeMatchesConcatenatedCount(t *testing.T) {
	a := Tokenize("Good news, everyone! The news is good.")
	b := Tokenize("No news is good news.")

	// Count one concatenated stream.
	concatenated := NewFrequencyTable()
	concatenated.Add(a...)
	concatenated.Add(b...)

	// Count per article, then merge in both orders.
	ta := NewFrequencyTable()
	ta.Add(a...)
	tb := NewFrequencyTable()
	tb.Add(b...)

	mergedAB := NewFrequencyTable()
	mergedAB.Merge(ta)
	mergedAB.Merge(tb)

	mergedBA := NewFrequencyTable()
	mergedBA.Merge(tb)
	mergedBA.Merge(ta)

	assert.Equal(t, concatenated, mergedAB)
	assert.Equal(t, concatenated, mergedBA)
	assert.Equal(t, 4, mergedAB.Count("news"))
}

func TestTopOrdering(t *testing.T) {
	table := NewFrequencyTable()
	table.Add("b", "b", "b", "a", "a", "c", "a", "d", "c")

	top := table.Top(3)

	assert.Equal(t, []Entry{
		{Word: "a", Count: 3},
		{Word: "b", Count: 3},
		{Word: "c", Count: 2},
	}, top)

	// Asking for more entries than exist returns everything.
	assert.Len(t, table.Top(100), 4)
}
