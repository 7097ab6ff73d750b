package domain

import (
	"errors"
	"iter"
	"strings"
)

// Generation is the result of a generative model call.
// It is either a TextGeneration or a StreamGeneration; use Join to
// collapse either form into a single string.
type Generation interface {
	isGeneration()
}

// TextGeneration is a complete model response.
type TextGeneration struct {
	Text string
}

// StreamGeneration is a model response delivered as ordered fragments.
// Iterating stops at the first non-nil error.
type StreamGeneration struct {
	Chunks iter.Seq2[string, error]
}

func (TextGeneration) isGeneration()   {}
func (StreamGeneration) isGeneration() {}

// ErrNilGeneration is returned by Join for a nil or empty generation.
var ErrNilGeneration = errors.New("nil generation")

// Join collapses a generation into one string.
// For a stream that fails part way, the text received so far is returned
// together with the error.
func Join(g Generation) (string, error) {
	switch g := g.(type) {
	case TextGeneration:
		return g.Text, nil
	case *TextGeneration:
		if g == nil {
			return "", ErrNilGeneration
		}
		return g.Text, nil
	case StreamGeneration:
		return joinStream(g)
	case *StreamGeneration:
		if g == nil {
			return "", ErrNilGeneration
		}
		return joinStream(*g)
	default:
		return "", ErrNilGeneration
	}
}

func joinStream(g StreamGeneration) (string, error) {
	if g.Chunks == nil {
		return "", ErrNilGeneration
	}
	var sb strings.Builder
	for chunk, err := range g.Chunks {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}
