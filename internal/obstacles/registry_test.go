package obstacles

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
)

func obstacle(x, y, w, h, conf float64, label string) Region {
	return Region{X: x, Y: y, Width: w, Height: h, Class: ClassObstacle, Confidence: conf, Label: label}
}

func TestSetRegions_ReplacesWholesale(t *testing.T) {
	reg := NewRegistry()

	reg.SetRegions([]Region{obstacle(0, 0, 10, 10, 0.9, "chair"), obstacle(50, 50, 10, 10, 0.9, "lamp")})
	reg.SetRegions([]Region{obstacle(100, 100, 10, 10, 0.9, "box")})

	snap := reg.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot length: got %d, want 1", len(snap))
	}
	if snap[0].Label != "box" {
		t.Errorf("stale region survived: %+v", snap[0])
	}
	if reg.Version() != 2 {
		t.Errorf("Version: got %d, want 2", reg.Version())
	}

	c := reg.CollidesWith(geometry.RectFromXYWH(0, 0, 20, 20))
	if c.Collision {
		t.Errorf("collision with replaced region: %+v", c.Region)
	}
}

func TestSetRegions_DropsMalformed(t *testing.T) {
	reg := NewRegistry()

	dropped := reg.SetRegions([]Region{
		obstacle(0, 0, 10, 10, 0.9, "ok"),
		obstacle(0, 0, -1, 10, 0.9, "negative width"),
		obstacle(0, 0, math.NaN(), 10, 0.9, "nan width"),
		obstacle(0, 0, 10, math.Inf(1), 0.9, "inf height"),
		obstacle(math.NaN(), 0, 10, 10, 0.9, "nan x"),
		obstacle(0, 0, 10, 10, 1.5, "confidence too high"),
		{X: 0, Y: 0, Width: 1, Height: 1, Class: "furniture", Confidence: 0.9},
	})

	if dropped != 6 {
		t.Errorf("dropped: got %d, want 6", dropped)
	}
	if reg.Dropped() != 6 {
		t.Errorf("Dropped(): got %d, want 6", reg.Dropped())
	}
	snap := reg.Snapshot()
	if len(snap) != 1 || snap[0].Label != "ok" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// Collision queries keep working after a partly corrupt feed
	if !reg.CollidesWith(geometry.RectFromXYWH(5, 5, 10, 10)).Collision {
		t.Error("valid region should still collide")
	}
}

func TestRegion_Validate(t *testing.T) {
	if err := obstacle(0, 0, 0, 0, 0, "").Validate(); err != nil {
		t.Errorf("zero-size region should be storable: %v", err)
	}
	if err := obstacle(0, 0, -1, 0, 0.5, "").Validate(); !errors.Is(err, ErrMalformedRegion) {
		t.Errorf("got %v, want ErrMalformedRegion", err)
	}
}

func TestCollidesWith_ConfidenceFloor(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       bool
	}{
		{"below threshold", 0.4, false},
		{"at threshold", 0.5, false},
		{"above threshold", 0.51, true},
		{"certain", 1.0, true},
	}

	rect := geometry.RectFromXYWH(0, 0, 100, 100)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CollidesWith([]Region{obstacle(10, 10, 20, 20, tt.confidence, "")}, rect)
			if c.Collision != tt.want {
				t.Errorf("Collision: got %v, want %v", c.Collision, tt.want)
			}
		})
	}
}

func TestCollidesWith_IgnoresClearRegions(t *testing.T) {
	regions := []Region{{X: 0, Y: 0, Width: 100, Height: 100, Class: ClassClear, Confidence: 0.99}}

	if CollidesWith(regions, geometry.RectFromXYWH(10, 10, 10, 10)).Collision {
		t.Error("clear region must not collide")
	}
	if KnownClear(regions, geometry.RectFromXYWH(10, 10, 10, 10)) == nil {
		t.Error("clear region should be reported by KnownClear")
	}
}

func TestCollidesWith_HighestConfidenceWins(t *testing.T) {
	regions := []Region{
		obstacle(0, 0, 50, 50, 0.6, "first"),
		obstacle(0, 0, 50, 50, 0.9, "second"),
		obstacle(0, 0, 50, 50, 0.9, "third"),
		obstacle(500, 500, 50, 50, 1.0, "elsewhere"),
	}

	c := CollidesWith(regions, geometry.RectFromXYWH(10, 10, 10, 10))
	if !c.Collision {
		t.Fatal("expected collision")
	}
	if c.Region.Label != "second" {
		t.Errorf("winner: got %s, want second (highest confidence, earliest on tie)", c.Region.Label)
	}
}

func TestCollidesWith_TouchingIsNotCollision(t *testing.T) {
	regions := []Region{obstacle(100, 0, 50, 50, 0.9, "")}

	if CollidesWith(regions, geometry.RectFromXYWH(50, 0, 50, 50)).Collision {
		t.Error("rects sharing an edge must not collide")
	}
}

func TestRegion_Name(t *testing.T) {
	if got := obstacle(0, 0, 1, 1, 1, "sofa").Name(); got != "sofa" {
		t.Errorf("Name: got %s, want sofa", got)
	}
	if got := obstacle(0, 0, 1, 1, 1, "").Name(); got != "obstacle" {
		t.Errorf("Name: got %s, want obstacle", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			reg.SetRegions([]Region{obstacle(float64(i), 0, 10, 10, 0.9, "")})
		}(i)
		go func() {
			defer wg.Done()
			_ = reg.CollidesWith(geometry.RectFromXYWH(0, 0, 5, 5))
			_ = reg.Snapshot()
		}()
	}
	wg.Wait()

	if reg.Version() != 10 {
		t.Errorf("Version: got %d, want 10", reg.Version())
	}
}
