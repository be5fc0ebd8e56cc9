package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(1, 3)
	if got := c.At(0, 0); got != blank+0x1+0x80 {
		t.Errorf("expected %U, got %U", blank+0x1+0x80, got)
	}
	c.Unset(0, 0)
	if got := c.At(0, 0); got != blank+0x80 {
		t.Errorf("expected %U after unset, got %U", blank+0x80, got)
	}
	c.Set(-1, 0)
	c.Set(100, 100)
	if c.At(1, 0) != blank {
		t.Error("out of range set should be ignored")
	}
}

func TestCanvasGlyphWins(t *testing.T) {
	c := NewCanvas(3, 3)
	c.Put(2, 4, 'm', "#ffffff")
	c.Set(2, 4)
	c.DrawLine(0, 4, 5, 4, "#000000")
	if c.At(1, 1) != 'm' {
		t.Errorf("expected glyph to survive line drawing, got %q", c.At(1, 1))
	}
	if c.Colors[1][1] != "#ffffff" {
		t.Errorf("expected glyph color kept, got %q", c.Colors[1][1])
	}
	if c.At(0, 1) == blank || c.At(2, 1) == blank {
		t.Error("expected line dots beside the glyph")
	}
}

func TestCanvasDrawRect(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawRect(0, 0, 7, 7, "")
	for col := 0; col < 4; col++ {
		if c.At(col, 0) == blank || c.At(col, 1) == blank {
			t.Errorf("column %d should be touched by the outline", col)
		}
	}
	c.Clear()
	if strings.Trim(c.String(), string(rune(blank))+"\n") != "" {
		t.Error("clear should leave only blank cells")
	}
}

func TestCanvasDrawPolygonIgnoresOddTail(t *testing.T) {
	c := NewCanvas(4, 4)
	c.DrawPolygon([]int{0, 0, 6, 0, 6}, "")
	if c.At(0, 0) == blank || c.At(3, 0) == blank {
		t.Error("expected the closed segment between the two points")
	}
	if c.At(3, 2) != blank {
		t.Error("odd trailing coordinate should be ignored")
	}
}

func TestCanvasStyledKeepsText(t *testing.T) {
	c := NewCanvas(3, 1)
	c.Put(0, 0, 'a', "")
	c.Put(2, 0, 'b', "#ff0000")
	out := c.Styled()
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Errorf("styled output lost glyphs: %q", out)
	}
	if got := strings.Count(out, "\n"); got != 1 {
		t.Errorf("expected 1 row, got %d", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		cursor, limit float64
		want          string
	}{
		{0, 0, "░░░░"},
		{1, 2, "██░░"},
		{5, 2, "████"},
		{-1, 2, "░░░░"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.cursor, tt.limit, 4); got != tt.want {
			t.Errorf("ProgressBar(%v, %v) = %q, want %q", tt.cursor, tt.limit, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Merchant Destroyed", 8); got != "Merchan…" {
		t.Errorf("got %q", got)
	}
	if got := truncate("short", 8); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestNextThemeWraps(t *testing.T) {
	th := ThemeDefault
	for range Themes {
		th = NextTheme(th)
	}
	if th.Name != ThemeDefault.Name {
		t.Errorf("expected to wrap to %s, got %s", ThemeDefault.Name, th.Name)
	}
	if GetTheme("nope").Name != ThemeDefault.Name {
		t.Error("unknown theme should fall back to default")
	}
}
