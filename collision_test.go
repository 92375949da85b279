package main

import (
	"testing"

	"pgregory.net/rapid"
)

func box(x, y, w, h float64) *Collider {
	return &Collider{Pos: Vec2{X: x, Y: y}, Width: w, Height: h}
}

func TestIsOverlapping(t *testing.T) {
	// Overlapping boxes
	if !IsOverlapping(box(0, 0, 10, 10), box(5, 5, 10, 10)) {
		t.Error("boxes should overlap")
	}

	// Touching edges count
	if !IsOverlapping(box(0, 0, 10, 10), box(10, 0, 10, 10)) {
		t.Error("boxes sharing an edge should overlap")
	}
	if !IsOverlapping(box(0, 0, 10, 10), box(10, 10, 10, 10)) {
		t.Error("boxes sharing a corner should overlap")
	}

	// Separated
	if IsOverlapping(box(0, 0, 10, 10), box(10.01, 0, 10, 10)) {
		t.Error("boxes should not overlap")
	}
	if IsOverlapping(box(0, 0, 10, 10), box(0, -10.01, 10, 10)) {
		t.Error("boxes should not overlap vertically")
	}

	// Containment
	if !IsOverlapping(box(0, 0, 100, 100), box(1, 1, 2, 2)) {
		t.Error("contained box should overlap")
	}
}

func TestIsOverlappingSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		gen := func(label string) *Collider {
			return box(
				rapid.Float64Range(-500, 500).Draw(rt, label+"x"),
				rapid.Float64Range(-500, 500).Draw(rt, label+"y"),
				rapid.Float64Range(0, 300).Draw(rt, label+"w"),
				rapid.Float64Range(0, 300).Draw(rt, label+"h"),
			)
		}
		a, b := gen("a"), gen("b")
		if IsOverlapping(a, b) != IsOverlapping(b, a) {
			rt.Fatalf("overlap not symmetric for %+v and %+v", a, b)
		}
		if !IsOverlapping(a, a) {
			rt.Fatal("a box always overlaps itself")
		}
	})
}

func TestCollisionIndexRemoveByIdentity(t *testing.T) {
	var ci CollisionIndex
	first := box(0, 0, 10, 10)
	twin := box(0, 0, 10, 10)
	ci.Register(first)
	ci.Register(twin)

	if !ci.Remove(twin) {
		t.Fatal("remove should find the registered collider")
	}
	if !ci.Contains(first) || ci.Contains(twin) {
		t.Error("only the removed instance should be gone")
	}
	if ci.Remove(twin) {
		t.Error("removing twice should report false")
	}
	if ci.Len() != 1 {
		t.Errorf("expected 1 collider, got %d", ci.Len())
	}
}

func TestCollisionIndexTouchingSkipsSelf(t *testing.T) {
	var ci CollisionIndex
	self := box(0, 0, 10, 10)
	near := box(5, 0, 10, 10)
	far := box(100, 0, 10, 10)
	ci.Register(self)
	ci.Register(near)
	ci.Register(far)

	got := ci.Touching(self)
	if len(got) != 1 || got[0] != near {
		t.Errorf("expected only the near collider, got %v", got)
	}
}

func TestCollisionIndexNearestTouching(t *testing.T) {
	var ci CollisionIndex
	self := &Collider{Pos: Vec2{}, Width: 40, Height: 40, Source: SourcePlayer}
	farther := &Collider{Pos: Vec2{X: 30}, Width: 40, Height: 40, Source: SourcePlayer}
	nearer := &Collider{Pos: Vec2{X: -10}, Width: 40, Height: 40, Source: SourcePlayer}
	chunk := &Collider{Pos: Vec2{}, Width: 240, Height: 240, Source: SourceChunk}
	ci.Register(self)
	ci.Register(farther)
	ci.Register(nearer)
	ci.Register(chunk)

	if got := ci.NearestTouching(self, SourcePlayer, nil); got != nearer {
		t.Errorf("expected nearest player collider, got %+v", got)
	}
	skipNearer := func(c *Collider) bool { return c == nearer }
	if got := ci.NearestTouching(self, SourcePlayer, skipNearer); got != farther {
		t.Errorf("expected skip to fall through to the farther collider, got %+v", got)
	}
	if got := ci.NearestTouching(self, SourceDestroyedTile, nil); got != nil {
		t.Errorf("expected no hole, got %+v", got)
	}
}
