// Package quran provides an immutable catalogue of the Quran's verses:
// global verse numbering, surah membership and surah boundaries. The rest
// of the application treats it as a read-only lookup table.
package quran

import (
	"fmt"
	"sort"

	"github.com/example/khatm/pkg/models"
)

// TotalVerses is the number of verses in the full text. An index that does
// not add up to this is rejected rather than used for planning.
const TotalVerses = 6236

// SurahCount is the number of surahs in the full text.
const SurahCount = 114

// SurahInfo is the minimal per-surah record the index is built from.
type SurahInfo struct {
	Number     int
	Name       string
	VerseCount int
}

// Index is an immutable verse catalogue. Safe for concurrent use.
type Index struct {
	surahs []SurahInfo
	// offsets[i] is the number of verses before surah i+1, so surah i+1
	// spans global numbers offsets[i]+1 .. offsets[i]+VerseCount.
	offsets []int
	total   int
}

// NewIndex builds an index from an ordered surah list. The list must be
// densely numbered starting at 1 and every verse count must be positive.
func NewIndex(surahs []SurahInfo) (*Index, error) {
	if len(surahs) == 0 {
		return nil, fmt.Errorf("surah list is empty")
	}

	offsets := make([]int, len(surahs))
	total := 0
	for i, s := range surahs {
		if s.Number != i+1 {
			return nil, fmt.Errorf("surah list is not densely numbered: position %d has number %d", i+1, s.Number)
		}
		if s.VerseCount <= 0 {
			return nil, fmt.Errorf("surah %d has non-positive verse count %d", s.Number, s.VerseCount)
		}
		offsets[i] = total
		total += s.VerseCount
	}

	return &Index{surahs: surahs, offsets: offsets, total: total}, nil
}

// Canonical returns the built-in index of all 114 surahs.
func Canonical() *Index {
	ix, err := NewIndex(canonicalSurahs)
	if err != nil {
		// Built-in data is validated by tests; this cannot happen at runtime.
		panic(err)
	}
	return ix
}

// TotalVerseCount returns the number of verses in the index.
func (ix *Index) TotalVerseCount() int {
	return ix.total
}

// VerseAt resolves a global verse number to its full reference.
func (ix *Index) VerseAt(globalNumber int) (models.VerseRef, error) {
	if globalNumber < 1 || globalNumber > ix.total {
		return models.VerseRef{}, fmt.Errorf("verse number %d out of range 1..%d", globalNumber, ix.total)
	}

	// First surah whose range ends at or after globalNumber.
	i := sort.Search(len(ix.surahs), func(i int) bool {
		return ix.offsets[i]+ix.surahs[i].VerseCount >= globalNumber
	})

	return models.VerseRef{
		GlobalNumber: globalNumber,
		SurahNumber:  ix.surahs[i].Number,
		VerseInSurah: globalNumber - ix.offsets[i],
	}, nil
}

// SurahName returns the display name for a surah number.
func (ix *Index) SurahName(number int) (string, error) {
	if number < 1 || number > len(ix.surahs) {
		return "", fmt.Errorf("surah number %d out of range 1..%d", number, len(ix.surahs))
	}
	return ix.surahs[number-1].Name, nil
}

// Surahs returns the surah records in order.
func (ix *Index) Surahs() []SurahInfo {
	out := make([]SurahInfo, len(ix.surahs))
	copy(out, ix.surahs)
	return out
}
