package textstats

import (
	"sort"
)

// FrequencyTable counts occurrences of word tokens. The zero value of an
// absent key is a valid count, so lookups never fail.
type FrequencyTable map[string]int

// Entry is one row of a sorted frequency report.
type Entry struct {
	Word  string `bson:"word"`
	Count int    `bson:"count"`
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() FrequencyTable {
	return make(FrequencyTable)
}

// Add accumulates the given tokens into the table.
func (t FrequencyTable) Add(tokens ...string) {
	for _, token := range tokens {
		t[token]++
	}
}

// Count returns how many times word was seen. Absent words count as zero.
func (t FrequencyTable) Count(word string) int {
	return t[word]
}

// Merge adds every count from other into t. Merging per-article tables in any
// order yields the same totals as counting one concatenated token stream.
func (t FrequencyTable) Merge(other FrequencyTable) {
	for word, count := range other {
		t[word] += count
	}
}

// Total returns the sum of all counts, i.e. the number of tokens seen.
func (t FrequencyTable) Total() int {
	total := 0
	for _, count := range t {
		total += count
	}
	return total
}

// Top returns up to n entries ordered by descending count, ties broken
// alphabetically so reports are stable between runs.
func (t FrequencyTable) Top(n int) []Entry {
	if n <= 0 || len(t) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(t))
	for word, count := range t {
		entries = append(entries, Entry{Word: word, Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})

	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
