package services

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/floats"
)

// TFIDFIndex is a term-frequency/inverse-document-frequency vector space
// built once over the whole corpus. Queries project into the fitted
// vocabulary; out-of-vocabulary terms are dropped. The index is read-only
// after construction and safe for concurrent use.
type TFIDFIndex struct {
	vocabulary map[string]int
	idf        []float64
	vectors    []SparseVector
	stopwords  map[string]struct{}
}

// SparseVector holds the non-zero weights of one document, L2-normalized
// so that a dot product of two vectors is their cosine similarity.
type SparseVector struct {
	Terms   []int
	Weights []float64
}

// IsZero reports whether the vector has no weight at all, which happens
// for documents with no extractable tokens.
func (v SparseVector) IsZero() bool {
	return len(v.Terms) == 0
}

// ScoredDocument pairs a corpus position with a similarity score.
type ScoredDocument struct {
	Position int
	Score    float64
}

// Tokens of two or more word characters, after NFKC normalization and
// lowercasing. Korean and other non-Latin scripts tokenize the same way.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_]+`)

// NewTFIDFIndex fits the vector space over the corpus. An empty document
// yields a zero vector; it never fails the build. Pass nil stopwords to
// keep every token.
func NewTFIDFIndex(corpus []string, stopwords map[string]struct{}) *TFIDFIndex {
	index := &TFIDFIndex{
		vocabulary: make(map[string]int),
		stopwords:  stopwords,
	}

	// First pass: vocabulary in first-seen order and document frequencies.
	tokenized := make([][]string, len(corpus))
	documentFrequency := []int{}
	for i, doc := range corpus {
		tokens := index.tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[int]struct{}, len(tokens))
		for _, token := range tokens {
			termID, ok := index.vocabulary[token]
			if !ok {
				termID = len(index.vocabulary)
				index.vocabulary[token] = termID
				documentFrequency = append(documentFrequency, 0)
			}
			if _, counted := seen[termID]; !counted {
				documentFrequency[termID]++
				seen[termID] = struct{}{}
			}
		}
	}

	// Smoothed IDF, matching the reference vectorizer.
	n := float64(len(corpus))
	index.idf = make([]float64, len(documentFrequency))
	for termID, df := range documentFrequency {
		index.idf[termID] = math.Log((1+n)/(1+float64(df))) + 1
	}

	index.vectors = make([]SparseVector, len(corpus))
	for i, tokens := range tokenized {
		index.vectors[i] = index.weigh(tokens)
	}
	return index
}

// Len returns the corpus size.
func (idx *TFIDFIndex) Len() int {
	return len(idx.vectors)
}

// VocabularySize returns the number of distinct terms.
func (idx *TFIDFIndex) VocabularySize() int {
	return len(idx.vocabulary)
}

// Vector returns the fitted vector at a corpus position.
func (idx *TFIDFIndex) Vector(position int) (SparseVector, bool) {
	if position < 0 || position >= len(idx.vectors) {
		return SparseVector{}, false
	}
	return idx.vectors[position], true
}

// QueryVector projects an arbitrary string into the fitted term space.
func (idx *TFIDFIndex) QueryVector(text string) SparseVector {
	return idx.weigh(idx.tokenize(text))
}

// Cosine returns the cosine similarity of two vectors in [0, 1]; it is 0
// when either vector is zero. Vectors are unit length, so this is a dot
// product over the intersecting terms.
func Cosine(a, b SparseVector) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] == b.Terms[j]:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Terms[i] < b.Terms[j]:
			i++
		default:
			j++
		}
	}
	return math.Min(math.Max(dot, 0), 1)
}

// TopKByQuery scores the query against every corpus entry and returns the
// k best, descending by score with ties kept in corpus order. Non-positive
// k yields an empty result.
func (idx *TFIDFIndex) TopKByQuery(text string, k int) []ScoredDocument {
	return idx.topK(idx.QueryVector(text), k, -1)
}

// TopKSimilarTo ranks the corpus against one of its own entries, excluding
// the entry itself. Unknown positions yield an empty result.
func (idx *TFIDFIndex) TopKSimilarTo(position, k int) []ScoredDocument {
	vector, ok := idx.Vector(position)
	if !ok {
		return nil
	}
	return idx.topK(vector, k, position)
}

func (idx *TFIDFIndex) topK(query SparseVector, k, exclude int) []ScoredDocument {
	if k <= 0 {
		return nil
	}
	scored := make([]ScoredDocument, 0, len(idx.vectors))
	for position := range idx.vectors {
		if position == exclude {
			continue
		}
		scored = append(scored, ScoredDocument{
			Position: position,
			Score:    Cosine(query, idx.vectors[position]),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func (idx *TFIDFIndex) tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	tokens := tokenPattern.FindAllString(text, -1)
	if idx.stopwords == nil {
		return tokens
	}
	kept := tokens[:0]
	for _, token := range tokens {
		if _, stop := idx.stopwords[token]; !stop {
			kept = append(kept, token)
		}
	}
	return kept
}

// weigh turns a token list into an L2-normalized sparse TF-IDF vector,
// dropping terms outside the fitted vocabulary.
func (idx *TFIDFIndex) weigh(tokens []string) SparseVector {
	counts := make(map[int]float64)
	for _, token := range tokens {
		if termID, ok := idx.vocabulary[token]; ok {
			counts[termID]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	terms := make([]int, 0, len(counts))
	for termID := range counts {
		terms = append(terms, termID)
	}
	sort.Ints(terms)

	weights := make([]float64, len(terms))
	for i, termID := range terms {
		weights[i] = counts[termID] * idx.idf[termID]
	}
	if length := floats.Norm(weights, 2); length > 0 {
		floats.Scale(1/length, weights)
	}
	return SparseVector{Terms: terms, Weights: weights}
}
