// Package aligner fabricates word and phone timings for a transcript.
//
// Nothing here looks at audio. Word durations are drawn uniformly from
// [0.3, 0.7) seconds, each word is split evenly into
// max(2, floor(len*0.6)) phones, and every phone label is drawn uniformly
// from a fixed 16-symbol inventory.
package aligner

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/listenupapp/aligner/internal/domain"
)

// Word duration range and phone density.
const (
	MinWordDuration    = 0.3
	WordDurationSpread = 0.4
	MinPhonesPerWord   = 2
	PhonesPerChar      = 0.6
)

// Phonemes is the label inventory phones are sampled from.
var Phonemes = [...]string{
	"AH", "EH", "IH", "OW", "UW",
	"B", "D", "K", "L", "M", "N", "R", "S", "T", "TH", "W",
}

// Source supplies the random draws. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Aligner generates mock alignments. It is safe for concurrent use; draws
// from the underlying Source are serialised.
type Aligner struct {
	mu  sync.Mutex
	src Source
}

// New creates an aligner drawing from src.
func New(src Source) *Aligner {
	return &Aligner{src: src}
}

// NewSeeded creates an aligner whose output is fully determined by seed.
func NewSeeded(seed uint64) *Aligner {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewRandom creates an aligner seeded from the runtime's random source.
func NewRandom() *Aligner {
	return NewSeeded(rand.Uint64())
}

// Align builds the alignment for entry. The caller validates the entry
// first; a blank transcript yields an empty result.
func (a *Aligner) Align(entry domain.TranscriptEntry) domain.AlignmentResult {
	tokens := Tokenize(entry.Transcript)

	a.mu.Lock()
	words, phones, total := a.generate(tokens)
	a.mu.Unlock()

	return domain.AlignmentResult{
		EntryID:              entry.ID,
		Identifier:           entry.Identifier,
		Transcript:           entry.Transcript,
		TotalDuration:        total,
		Words:                words,
		Phones:               phones,
		AverageWordDuration:  domain.MeanDuration(words),
		AveragePhoneDuration: domain.MeanDuration(phones),
	}
}

// generate walks the tokens with a running cursor. The cursor moves only in
// the phone loop; a word's end is taken before its phones are laid out, and
// it matches the last phone's end because the phone durations add up to the
// word duration.
func (a *Aligner) generate(tokens []string) (words, phones []domain.Interval, cursor float64) {
	words = make([]domain.Interval, 0, len(tokens))
	phones = make([]domain.Interval, 0, len(tokens)*MinPhonesPerWord)

	for _, token := range tokens {
		// The explicit conversion keeps the compiler from fusing this into an FMA.
		wordDuration := MinWordDuration + float64(a.src.Float64()*WordDurationSpread)
		words = append(words, domain.Interval{
			Label:    token,
			Start:    cursor,
			End:      cursor + wordDuration,
			Duration: wordDuration,
		})

		count := PhoneCount(token)
		phoneDuration := wordDuration / float64(count)
		for range count {
			phones = append(phones, domain.Interval{
				Label:    Phonemes[a.src.IntN(len(Phonemes))],
				Start:    cursor,
				End:      cursor + phoneDuration,
				Duration: phoneDuration,
			})
			cursor += phoneDuration
		}
	}

	return words, phones, cursor
}

// PhoneCount returns how many phones a token is split into:
// max(2, floor(len(token) * 0.6)), with len in UTF-16 code units.
func PhoneCount(token string) int {
	n := float64(utf16Len(token))
	return max(MinPhonesPerWord, int(math.Floor(n*PhonesPerChar)))
}
