package usecase

import "testing"

func TestSimilarity(t *testing.T) {
	t.Run("identical strings score 100", func(t *testing.T) {
		if got := Similarity("avonmore milk 2l", "avonmore milk 2l"); got != 100 {
			t.Errorf("Similarity(identical) = %v, want 100", got)
		}
	})

	t.Run("word order does not matter", func(t *testing.T) {
		if got := Similarity("milk avonmore 2l", "avonmore milk 2l"); got != 100 {
			t.Errorf("Similarity(reordered tokens) = %v, want 100", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"avonmore milk 2l", "avonmore milk 1l"},
			{"kerrygold butter 250g", "butter kerrygold"},
			{"tayto cheese onion", "king crisps cheese onion"},
		}
		for _, p := range pairs {
			ab := Similarity(p[0], p[1])
			ba := Similarity(p[1], p[0])
			if ab != ba {
				t.Errorf("Similarity(%q, %q) = %v but reversed = %v", p[0], p[1], ab, ba)
			}
		}
	})

	t.Run("unrelated names score low", func(t *testing.T) {
		if got := Similarity("avonmore milk 2l", "fairy washing up liquid"); got >= 50 {
			t.Errorf("Similarity(unrelated) = %v, want < 50", got)
		}
	})

	t.Run("empty input scores zero", func(t *testing.T) {
		if got := Similarity("", "milk"); got != 0 {
			t.Errorf("Similarity(empty, milk) = %v, want 0", got)
		}
		if got := Similarity("milk", ""); got != 0 {
			t.Errorf("Similarity(milk, empty) = %v, want 0", got)
		}
	})

	t.Run("bounded to 0-100", func(t *testing.T) {
		pairs := [][2]string{
			{"a", "b"},
			{"milk", "milk 2l"},
			{"kerrygold irish butter 250g", "butter 250g kerrygold irish"},
		}
		for _, p := range pairs {
			got := Similarity(p[0], p[1])
			if got < 0 || got > 100 {
				t.Errorf("Similarity(%q, %q) = %v, out of [0,100]", p[0], p[1], got)
			}
		}
	})
}
