package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorSnapshot_Len(t *testing.T) {
	var nilSnap *VectorSnapshot
	assert.Equal(t, 0, nilSnap.Len())

	snap := &VectorSnapshot{
		Dimensions: 2,
		Embeddings: [][]float32{{1, 2}, {3, 4}},
		Texts:      []string{"a", "b"},
		Sources:    []string{"doc1", "doc1"},
	}
	assert.Equal(t, 2, snap.Len())
}

func TestVectorSnapshot_Consistent(t *testing.T) {
	tests := []struct {
		name string
		snap *VectorSnapshot
		want bool
	}{
		{name: "nil", snap: nil, want: true},
		{name: "empty", snap: &VectorSnapshot{}, want: true},
		{
			name: "aligned",
			snap: &VectorSnapshot{
				Dimensions: 2,
				Embeddings: [][]float32{{1, 2}},
				Texts:      []string{"a"},
				Sources:    []string{"doc1"},
			},
			want: true,
		},
		{
			name: "missing text",
			snap: &VectorSnapshot{
				Dimensions: 2,
				Embeddings: [][]float32{{1, 2}},
				Sources:    []string{"doc1"},
			},
			want: false,
		},
		{
			name: "wrong dimension",
			snap: &VectorSnapshot{
				Dimensions: 3,
				Embeddings: [][]float32{{1, 2}},
				Texts:      []string{"a"},
				Sources:    []string{"doc1"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.Consistent())
		})
	}
}
