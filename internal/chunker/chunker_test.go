// ABOUTME: Tests for the overlapping window chunker
// ABOUTME: Verifies coverage, overlap, rune-boundary handling, and edge cases
package chunker

import (
	"errors"
	"strings"
	"testing"

	"docqa/internal/models"
)

func TestChunk_ExactFit(t *testing.T) {
	text := strings.Repeat("a", 1500)

	chunks, err := Chunk(text, 1500, 200)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].CharStart != 0 || chunks[0].CharEnd != 1500 {
		t.Errorf("range = [%d,%d), want [0,1500)", chunks[0].CharStart, chunks[0].CharEnd)
	}
}

func TestChunk_Windows(t *testing.T) {
	text := strings.Repeat("a", 3000)

	chunks, err := Chunk(text, 1500, 200)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	want := [][2]int{{0, 1500}, {1300, 2800}, {2600, 3000}}
	if len(chunks) != len(want) {
		t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].CharStart != w[0] || chunks[i].CharEnd != w[1] {
			t.Errorf("chunk %d range = [%d,%d), want [%d,%d)",
				i, chunks[i].CharStart, chunks[i].CharEnd, w[0], w[1])
		}
		if chunks[i].ChunkID != i {
			t.Errorf("chunk %d ChunkID = %d, want %d", i, chunks[i].ChunkID, i)
		}
	}
}

func TestChunk_CoverageAndOverlap(t *testing.T) {
	sizes := []int{1, 99, 100, 101, 250, 999, 1000}
	for _, n := range sizes {
		text := strings.Repeat("x", n)
		chunks, err := Chunk(text, 100, 20)
		if err != nil {
			t.Fatalf("Chunk(n=%d) error = %v", n, err)
		}
		if len(chunks) == 0 {
			t.Fatalf("Chunk(n=%d) returned no chunks", n)
		}

		if chunks[0].CharStart != 0 {
			t.Errorf("n=%d: first chunk starts at %d, want 0", n, chunks[0].CharStart)
		}
		last := chunks[len(chunks)-1]
		if last.CharEnd != n {
			t.Errorf("n=%d: last chunk ends at %d, want %d", n, last.CharEnd, n)
		}

		for i := range chunks {
			width := chunks[i].CharEnd - chunks[i].CharStart
			if width > 100 {
				t.Errorf("n=%d: chunk %d width = %d, exceeds chunk size", n, i, width)
			}
			if i == 0 {
				continue
			}
			// No gaps, and every non-final pair overlaps by exactly 20 runes.
			ov := chunks[i-1].CharEnd - chunks[i].CharStart
			if ov < 0 {
				t.Errorf("n=%d: gap between chunk %d and %d", n, i-1, i)
			}
			if i < len(chunks)-1 && ov != 20 {
				t.Errorf("n=%d: overlap between chunk %d and %d = %d, want 20", n, i-1, i, ov)
			}
		}
	}
}

func TestChunk_MultibyteBoundaries(t *testing.T) {
	// 300 runes, each 3 bytes in UTF-8
	text := strings.Repeat("日", 300)

	chunks, err := Chunk(text, 100, 20)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}

	total := 0
	for i, c := range chunks {
		runes := []rune(c.Text)
		if len(runes) != c.CharEnd-c.CharStart {
			t.Errorf("chunk %d: rune count %d does not match range [%d,%d)",
				i, len(runes), c.CharStart, c.CharEnd)
		}
		for _, r := range runes {
			if r != '日' {
				t.Fatalf("chunk %d contains corrupted rune %q", i, r)
			}
		}
		total = c.CharEnd
	}
	if total != 300 {
		t.Errorf("coverage ends at %d, want 300", total)
	}
}

func TestChunk_EmptyText(t *testing.T) {
	chunks, err := Chunk("", 100, 20)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("len(chunks) = %d, want 0", len(chunks))
	}
}

func TestChunk_InvalidParams(t *testing.T) {
	cases := []struct {
		name     string
		size, ov int
	}{
		{"zero size", 0, 0},
		{"zero overlap", 100, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Chunk("some text", tc.size, tc.ov)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("Chunk(%d, %d) error = %v, want validation error", tc.size, tc.ov, err)
			}
		})
	}
}
