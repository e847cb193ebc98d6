package detector

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/ironsheep/fitcheck-mcp/internal/imaging"
	"github.com/ironsheep/fitcheck-mcp/internal/obstacles"
)

func TestStaticDetector_ReturnsCopy(t *testing.T) {
	d := &StaticDetector{Regions: []obstacles.Region{
		{X: 1, Y: 2, Width: 3, Height: 4, Class: obstacles.ClassObstacle, Confidence: 0.9},
	}}

	got, err := d.Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	got[0].X = 100
	assert.Equal(t, 1.0, d.Regions[0].X, "caller must not mutate the configured regions")
}

func TestStaticDetector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&StaticDetector{}).Detect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRandomDetector_RegionsInsideViewport(t *testing.T) {
	vp := geometry.RectFromXYWH(10, 20, 400, 300)
	d, err := NewRandomDetector(vp, 5, 42)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		regions, err := d.Detect(context.Background())
		require.NoError(t, err)
		assert.LessOrEqual(t, len(regions), 5)

		for _, r := range regions {
			require.NoError(t, r.Validate())
			assert.GreaterOrEqual(t, r.X, vp.Left)
			assert.GreaterOrEqual(t, r.Y, vp.Top)
			assert.LessOrEqual(t, r.X+r.Width, vp.Right+1e-9)
			assert.LessOrEqual(t, r.Y+r.Height, vp.Bottom+1e-9)
			assert.GreaterOrEqual(t, r.Confidence, 0.3)
			assert.LessOrEqual(t, r.Confidence, 1.0)
		}
	}
}

func TestRandomDetector_SeedIsDeterministic(t *testing.T) {
	vp := geometry.RectFromXYWH(0, 0, 640, 480)
	a, _ := NewRandomDetector(vp, 4, 7)
	b, _ := NewRandomDetector(vp, 4, 7)

	for i := 0; i < 10; i++ {
		ra, _ := a.Detect(context.Background())
		rb, _ := b.Detect(context.Background())
		assert.Equal(t, ra, rb)
	}
}

func TestRandomDetector_InvalidViewport(t *testing.T) {
	_, err := NewRandomDetector(geometry.RectFromXYWH(0, 0, 0, 10), 3, 1)
	assert.Error(t, err)
}

// writeFloorFrame writes a bright frame with one dark box and returns its path.
func writeFloorFrame(t *testing.T, width, height int, box image.Rectangle) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{230, 230, 225, 255}
			if image.Pt(x, y).In(box) {
				c = color.RGBA{20, 20, 20, 255}
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "latest.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestFrameDetector_FindsObstacleAndFloor(t *testing.T) {
	path := writeFloorFrame(t, 320, 240, image.Rect(100, 40, 180, 120))
	vp := geometry.RectFromXYWH(0, 0, 640, 480)
	cache := imaging.NewFrameCache()

	d, err := NewFrameDetector(path, cache, vp, FrameOptions{})
	require.NoError(t, err)

	regions, err := d.Detect(context.Background())
	require.NoError(t, err)

	var obstacle, clear *obstacles.Region
	for i := range regions {
		r := regions[i]
		require.NoError(t, r.Validate())
		switch r.Class {
		case obstacles.ClassObstacle:
			if obstacle == nil {
				obstacle = &r
			}
		case obstacles.ClassClear:
			if clear == nil {
				clear = &r
			}
		}
	}

	require.NotNil(t, obstacle, "dark box should be reported as an obstacle")
	assert.InDelta(t, 200, obstacle.X, 8)
	assert.InDelta(t, 80, obstacle.Y, 8)
	assert.InDelta(t, 160, obstacle.Width, 10)
	assert.InDelta(t, 160, obstacle.Height, 10)
	assert.Greater(t, obstacle.Confidence, obstacles.ConfidenceThreshold)
	assert.Equal(t, "object", obstacle.Label)

	require.NotNil(t, clear, "empty lower half should be reported as clear floor")
	assert.GreaterOrEqual(t, clear.Y, 240.0)

	assert.Equal(t, 1, cache.Len(), "frame should stay cached for previews")
}

func TestFrameDetector_MissingFrame(t *testing.T) {
	d, err := NewFrameDetector("/nonexistent/latest.png", nil, geometry.RectFromXYWH(0, 0, 100, 100), FrameOptions{})
	require.NoError(t, err)

	_, err = d.Detect(context.Background())
	assert.Error(t, err)
}

func TestNewFrameDetector_Validation(t *testing.T) {
	_, err := NewFrameDetector("", nil, geometry.RectFromXYWH(0, 0, 100, 100), FrameOptions{})
	assert.Error(t, err)

	_, err = NewFrameDetector("x.png", nil, geometry.Rect{}, FrameOptions{})
	assert.Error(t, err)
}

func TestFrameOptions_Defaults(t *testing.T) {
	got := FrameOptions{}.withDefaults()
	assert.Equal(t, DefaultFrameOptions(), got)

	noBlur := FrameOptions{BlurRadius: -1}.withDefaults()
	assert.Equal(t, 0.0, noBlur.BlurRadius)
}
