package partialfile_test

import (
	"testing"

	"github.com/buildbarn/bb-transfer/pkg/partialfile"
	"github.com/stretchr/testify/require"
)

func TestValidPartMerge(t *testing.T) {
	t.Run("Overlapping", func(t *testing.T) {
		p := partialfile.ValidPart{Start: 0, End: 1000}
		p.Merge(partialfile.ValidPart{Start: 500, End: 1500})
		require.Equal(t, partialfile.ValidPart{Start: 0, End: 1500}, p)
	})

	t.Run("Touching", func(t *testing.T) {
		p := partialfile.ValidPart{Start: 0, End: 512}
		p.Merge(partialfile.ValidPart{Start: 512, End: 1024})
		require.Equal(t, partialfile.ValidPart{Start: 0, End: 1024}, p)
	})

	t.Run("Contained", func(t *testing.T) {
		p := partialfile.ValidPart{Start: 0, End: 2048}
		p.Merge(partialfile.ValidPart{Start: 512, End: 1024})
		require.Equal(t, partialfile.ValidPart{Start: 0, End: 2048}, p)
	})

	t.Run("Disjoint", func(t *testing.T) {
		// Merging a disjoint interval must leave the receiver
		// unchanged; the gap in between holds no valid data.
		p := partialfile.ValidPart{Start: 0, End: 512}
		p.Merge(partialfile.ValidPart{Start: 1024, End: 1536})
		require.Equal(t, partialfile.ValidPart{Start: 0, End: 512}, p)
	})

	t.Run("Commutative", func(t *testing.T) {
		parts := []partialfile.ValidPart{
			{Start: 0, End: 512},
			{Start: 256, End: 768},
			{Start: 768, End: 1024},
		}
		for _, a := range parts {
			for _, b := range parts {
				x, y := a, b
				x.Merge(b)
				y.Merge(a)
				if max(a.Start, b.Start) <= min(a.End, b.End) {
					require.Equal(t, x, y)
				}
			}
		}
	})
}

func TestStateGetPercentValid(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		s := partialfile.State{TotalSizeBytes: 4096}
		require.Equal(t, 0, s.GetPercentValid())
	})

	t.Run("DistinctHeadAndTail", func(t *testing.T) {
		s := partialfile.State{
			TotalSizeBytes: 4096,
			ValidHead:      &partialfile.ValidPart{Start: 0, End: 512},
			ValidTail:      &partialfile.ValidPart{Start: 3584, End: 4096},
		}
		require.Equal(t, 25, s.GetPercentValid())
	})

	t.Run("Collapsed", func(t *testing.T) {
		// Once the head and tail describe the same interval,
		// that interval must only be counted once.
		s := partialfile.State{
			TotalSizeBytes: 4096,
			ValidHead:      &partialfile.ValidPart{Start: 0, End: 4096},
			ValidTail:      &partialfile.ValidPart{Start: 0, End: 4096},
		}
		require.Equal(t, 100, s.GetPercentValid())
	})
}

func TestStateHasValidHeadAndTail(t *testing.T) {
	s := partialfile.State{
		TotalSizeBytes: 4096,
		ValidHead:      &partialfile.ValidPart{Start: 0, End: 1024},
		ValidTail:      &partialfile.ValidPart{Start: 3584, End: 4096},
	}
	require.True(t, s.HasValidHead(0))
	require.True(t, s.HasValidHead(1024))
	require.False(t, s.HasValidHead(1025))
	require.True(t, s.HasValidTail(512))
	require.False(t, s.HasValidTail(513))

	empty := partialfile.State{TotalSizeBytes: 4096}
	require.False(t, empty.HasValidHead(1))
	require.False(t, empty.HasValidTail(1))
}
