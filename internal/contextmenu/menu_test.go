package contextmenu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceKeepsMenuInsideViewport(t *testing.T) {
	size := Size{Width: 100, Height: 50}
	viewport := Size{Width: 400, Height: 300}

	tests := []struct {
		name   string
		anchor Point
		want   Point
	}{
		{name: "fits", anchor: Point{X: 10, Y: 20}, want: Point{X: 10, Y: 20}},
		{name: "right edge", anchor: Point{X: 390, Y: 20}, want: Point{X: 296, Y: 20}},
		{name: "bottom edge", anchor: Point{X: 10, Y: 290}, want: Point{X: 10, Y: 246}},
		{name: "negative", anchor: Point{X: -5, Y: -5}, want: Point{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Place(tt.anchor, size, viewport))
		})
	}
}

func TestPlaceNeverNegativeWhenMenuLargerThanViewport(t *testing.T) {
	got := Place(Point{X: 50, Y: 50}, Size{Width: 500, Height: 500}, Size{Width: 100, Height: 100})
	assert.Equal(t, Point{X: 0, Y: 0}, got)
}

func TestSelectInvokesActionThenCloses(t *testing.T) {
	var calls []string
	menu := Open(Point{X: 10, Y: 10}, DefaultViewport(), func() { calls = append(calls, "close") },
		Option{Label: "Dismiss", Action: func() { calls = append(calls, "dismiss") }},
		Option{Label: "Dismiss all", Danger: true, Action: func() { calls = append(calls, "dismiss-all") }},
	)

	require.True(t, menu.Select(1))
	assert.Equal(t, []string{"dismiss-all", "close"}, calls)
}

func TestSelectOutOfRangeIsNoop(t *testing.T) {
	closed := false
	menu := Open(Point{}, DefaultViewport(), func() { closed = true }, Option{Label: "Only"})

	assert.False(t, menu.Select(-1))
	assert.False(t, menu.Select(1))
	assert.False(t, closed)
}

func TestSelectWithoutActionStillCloses(t *testing.T) {
	closed := false
	menu := Open(Point{}, DefaultViewport(), func() { closed = true }, Option{Label: "Nothing"})

	assert.True(t, menu.Select(0))
	assert.True(t, closed)
}

func TestPointerDownClosesOnlyOutside(t *testing.T) {
	closed := 0
	menu := Open(Point{X: 100, Y: 100}, DefaultViewport(), func() { closed++ },
		Option{Label: "A"}, Option{Label: "B"})

	assert.False(t, menu.PointerDown(Point{X: 101, Y: 101}))
	assert.Equal(t, 0, closed)

	bounds := menu.Bounds()
	assert.True(t, menu.PointerDown(bounds.Max))
	assert.Equal(t, 1, closed)
	assert.True(t, menu.PointerDown(Point{X: 0, Y: 0}))
	assert.Equal(t, 2, closed)
}

func TestRenderListsItemsAtPlacedPosition(t *testing.T) {
	menu := Open(Point{X: 1270, Y: 5}, DefaultViewport(), nil,
		Option{Label: "Dismiss"}, Option{Label: "Dismiss all", Danger: true})

	view := menu.Render()
	assert.Equal(t, defaultViewW-edgeMargin-menuWidth, view.X)
	assert.Equal(t, 5, view.Y)
	assert.Equal(t, []Item{{Label: "Dismiss"}, {Label: "Dismiss all", Danger: true}}, view.Items)
}
