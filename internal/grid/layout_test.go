package grid

import (
	"testing"
	"time"

	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = TimeWindow{StartHour: 8, EndHour: 20, PixelsPerHour: 60}

func item(day timeutil.DayKey, start, end string) Item {
	return Item{SessionID: uuid.New(), Day: day, StartTime: start, EndTime: end}
}

func TestTimeWindowValidate(t *testing.T) {
	assert.NoError(t, testWindow.Validate())
	assert.NoError(t, TimeWindow{StartHour: 0, EndHour: 24, PixelsPerHour: 40}.Validate())

	assert.Error(t, TimeWindow{StartHour: 10, EndHour: 10, PixelsPerHour: 60}.Validate())
	assert.Error(t, TimeWindow{StartHour: -1, EndHour: 12, PixelsPerHour: 60}.Validate())
	assert.Error(t, TimeWindow{StartHour: 8, EndHour: 25, PixelsPerHour: 60}.Validate())
	assert.Error(t, TimeWindow{StartHour: 8, EndHour: 20, PixelsPerHour: 0}.Validate())
}

func TestLayoutGeometry(t *testing.T) {
	placed := Layout([]Item{item(timeutil.DayMonday, "09:00", "10:30")}, testWindow)

	require.Len(t, placed, 1)
	assert.Equal(t, 0, placed[0].Column)
	assert.InDelta(t, 60.0, placed[0].Top, 1e-9)    // one hour past the window start
	assert.InDelta(t, 90.0, placed[0].Height, 1e-9) // ninety minutes tall
}

func TestLayoutStaysInsideWindow(t *testing.T) {
	items := []Item{
		item(timeutil.DayMonday, "08:00", "09:00"),
		item(timeutil.DayWednesday, "12:10", "13:40"),
		item(timeutil.DayFriday, "19:00", "20:00"),
	}

	for _, p := range Layout(items, testWindow) {
		assert.GreaterOrEqual(t, p.Top, 0.0)
		assert.LessOrEqual(t, p.Top+p.Height, testWindow.Height())
	}
}

func TestLayoutTruncatesPartialItems(t *testing.T) {
	items := []Item{
		item(timeutil.DayMonday, "07:00", "09:00"), // clipped at the top
		item(timeutil.DayMonday, "19:30", "21:00"), // clipped at the bottom
	}

	placed := Layout(items, testWindow)
	require.Len(t, placed, 2)

	assert.InDelta(t, 0.0, placed[0].Top, 1e-9)
	assert.InDelta(t, 60.0, placed[0].Height, 1e-9)

	assert.InDelta(t, 690.0, placed[1].Top, 1e-9)
	assert.InDelta(t, 30.0, placed[1].Height, 1e-9)
}

func TestLayoutDropsUnplaceableItems(t *testing.T) {
	items := []Item{
		item(timeutil.DayMonday, "06:00", "07:30"),  // wholly before the window
		item(timeutil.DayMonday, "21:00", "22:00"),  // wholly after the window
		item(timeutil.DayMonday, "--:--", "10:00"),  // unparseable start
		item(timeutil.DayMonday, "10:00", "09:00"),  // inverted range
		item(timeutil.DayKey("noday"), "10:00", "11:00"),
	}

	assert.Empty(t, Layout(items, testWindow))
}

func TestLayoutSortOrderWithinDay(t *testing.T) {
	a := item(timeutil.DayTuesday, "14:00", "16:00")
	b := item(timeutil.DayTuesday, "09:00", "10:00")
	c := item(timeutil.DayTuesday, "14:00", "15:00") // same start as a, shorter, sorts first

	placed := Layout([]Item{a, b, c}, testWindow)
	require.Len(t, placed, 3)

	assert.Equal(t, b.SessionID, placed[0].Item.SessionID)
	assert.Equal(t, c.SessionID, placed[1].Item.SessionID)
	assert.Equal(t, a.SessionID, placed[2].Item.SessionID)

	assert.Equal(t, 0, placed[0].ZOrder)
	assert.Equal(t, 1, placed[1].ZOrder)
	assert.Equal(t, 2, placed[2].ZOrder)
}

func TestLayoutIsIdempotent(t *testing.T) {
	items := []Item{
		item(timeutil.DayMonday, "09:00", "10:00"),
		item(timeutil.DayMonday, "09:30", "11:00"),
		item(timeutil.DaySunday, "18:00", "19:20"),
	}

	first := Layout(items, testWindow)
	second := Layout(items, testWindow)

	assert.Equal(t, first, second)
}

func testWeek() timeutil.WeekRange {
	return timeutil.WeekRangeOf(time.Date(2026, time.August, 24, 0, 0, 0, 0, time.Local))
}

func TestPointerToRangeSnapsToGrid(t *testing.T) {
	sel := PointerToRange(testWeek(), 2, 9*60+3, 10*60+48, testWindow)

	assert.Equal(t, "2026-08-26", sel.Date)
	assert.Equal(t, "09:00", sel.StartTime)
	assert.Equal(t, "10:50", sel.EndTime)
}

func TestPointerToRangeClampsToWindow(t *testing.T) {
	sel := PointerToRange(testWeek(), 0, 5*60, 23*60, testWindow)

	assert.Equal(t, "08:00", sel.StartTime)
	assert.Equal(t, "20:00", sel.EndTime)
}

func TestPointerToRangeEnforcesMinimumDuration(t *testing.T) {
	sel := PointerToRange(testWeek(), 0, 9*60+2, 9*60+4, testWindow)
	assert.Equal(t, "09:00", sel.StartTime)
	assert.Equal(t, "09:10", sel.EndTime)

	// At the bottom edge the start shifts back instead.
	sel = PointerToRange(testWeek(), 0, 20*60, 20*60, testWindow)
	assert.Equal(t, "19:50", sel.StartTime)
	assert.Equal(t, "20:00", sel.EndTime)
}

func TestPointerToRangeSwapsInvertedDrag(t *testing.T) {
	sel := PointerToRange(testWeek(), 4, 11*60, 10*60, testWindow)

	assert.Equal(t, "2026-08-28", sel.Date)
	assert.Equal(t, "10:00", sel.StartTime)
	assert.Equal(t, "11:00", sel.EndTime)
}

func TestPointerToRangeFullDayBottomEdgeStaysParseable(t *testing.T) {
	fullDay := TimeWindow{StartHour: 0, EndHour: 24, PixelsPerHour: 40}

	sel := PointerToRange(testWeek(), 0, 23*60+55, 24*60, fullDay)
	assert.Equal(t, "24:00", sel.EndTime)

	// The exclusive-midnight end must survive a parse round trip so the
	// session lifecycle accepts the selection as-is.
	start, ok := timeutil.MinutesSinceMidnight(sel.StartTime)
	require.True(t, ok)
	end, ok := timeutil.MinutesSinceMidnight(sel.EndTime)
	require.True(t, ok)
	assert.Less(t, start, end)
}

func TestPointerToRangeClampsDayIndex(t *testing.T) {
	sel := PointerToRange(testWeek(), 12, 10*60, 11*60, testWindow)
	assert.Equal(t, "2026-08-30", sel.Date)

	sel = PointerToRange(testWeek(), -3, 10*60, 11*60, testWindow)
	assert.Equal(t, "2026-08-24", sel.Date)
}
