package page

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/pinsearch/internal/domain"
	"github.com/kailas-cloud/pinsearch/internal/domain/pin"
)

func TestNewRequest_Clamps(t *testing.T) {
	tests := []struct {
		name               string
		size, number       int
		wantSize, wantPage int
	}{
		{"valid", 5, 2, 5, 2},
		{"zero size", 0, 1, 1, 1},
		{"negative size", -4, 3, 1, 3},
		{"zero page", 10, 0, 10, 1},
		{"negative page", 10, -2, 10, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRequest("q", nil, tc.size, tc.number)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			if r.Size() != tc.wantSize {
				t.Errorf("Size() = %d, want %d", r.Size(), tc.wantSize)
			}
			if r.Number() != tc.wantPage {
				t.Errorf("Number() = %d, want %d", r.Number(), tc.wantPage)
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		size, number int
		start, end   int
	}{
		{5, 1, 1, 5},
		{5, 2, 6, 10},
		{20, 3, 41, 60},
		{1, 1, 1, 1},
	}
	for _, tc := range tests {
		r, err := NewRequest("", nil, tc.size, tc.number)
		if err != nil {
			t.Fatalf("NewRequest: %v", err)
		}
		g := r.Geometry()
		if g.Start != tc.start || g.End != tc.end {
			t.Errorf("size=%d page=%d: got [%d,%d], want [%d,%d]",
				tc.size, tc.number, g.Start, g.End, tc.start, tc.end)
		}
		if g.Len() != tc.size {
			t.Errorf("Len() = %d, want %d", g.Len(), tc.size)
		}
	}
}

func TestGeometry_Contains(t *testing.T) {
	g := Geometry{Start: 6, End: 10}
	for pos, want := range map[int]bool{5: false, 6: true, 8: true, 10: true, 11: false} {
		if got := g.Contains(pos); got != want {
			t.Errorf("Contains(%d) = %v, want %v", pos, got, want)
		}
	}
}

func TestNewRequest_NormalizesPins(t *testing.T) {
	r, err := NewRequest("", []pin.Pin{
		{ProductID: pin.Numeric(5), Position: 1},
		{ProductID: pin.String("7"), Position: 0},
	}, 3, 1)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if len(r.Pins()) != 1 {
		t.Fatalf("expected 1 pin, got %d", len(r.Pins()))
	}
	if r.Pins()[0].ID != "P0005" {
		t.Errorf("pin id = %q, want P0005", r.Pins()[0].ID)
	}
}

func TestNewRequest_Bounds(t *testing.T) {
	tests := []struct {
		name         string
		size, number int
		wantErr      bool
	}{
		{"max size", MaxSize, 1, false},
		{"size over max", MaxSize + 1, 1, true},
		{"huge size", 1 << 55, 1, true},
		{"last page within range", 1000, MaxPosition / 1000, false},
		{"page past max position", 1000, MaxPosition/1000 + 1, true},
		{"overflowing page", 1 << 10, 1 << 32, true},
		{"max int page", 1, math.MaxInt, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRequest("", nil, tc.size, tc.number)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Fatalf("err = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			g := r.Geometry()
			if g.Start < 1 || g.Start > g.End || g.End > MaxPosition || g.Len() != tc.size {
				t.Errorf("geometry = %+v for size=%d page=%d", g, tc.size, tc.number)
			}
		})
	}
}
