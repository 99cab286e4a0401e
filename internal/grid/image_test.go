package grid

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWeekPNG(t *testing.T) {
	week := testWeek()
	items := []BoardItem{
		{Item: item(timeutil.DayMonday, "09:00", "10:30")},
		{Item: item(timeutil.DayTuesday, "14:00", "15:00"), Emergency: true},
		{Item: Item{Day: timeutil.DayFriday, StartTime: "11:00", EndTime: "12:00", Canceled: true}},
	}
	now := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.Local)

	data, err := RenderWeekPNG(week, items, testWindow, now)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestRenderWeekPNGEmptyWeek(t *testing.T) {
	data, err := RenderWeekPNG(testWeek(), nil, testWindow, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderWeekPNGRejectsBadWindow(t *testing.T) {
	_, err := RenderWeekPNG(testWeek(), nil, TimeWindow{StartHour: 9, EndHour: 9, PixelsPerHour: 60}, time.Now())
	assert.Error(t, err)
}
