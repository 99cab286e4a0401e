package grid

import (
	"bytes"
	"image/color"
	"strconv"
	"time"

	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Canvas dimensions and paddings
const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	legendWidth     = 120
	dayPaddingX     = 8
	minBlockHeight  = 8.0
	blockRadius     = 6.0
	shadowOffset    = 3.0
	totalDays       = 7
)

// Color scheme
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 125}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}

	blockRegularColor   = color.RGBA{133, 193, 85, 220}
	blockEmergencyColor = color.RGBA{255, 182, 193, 255}
	blockCanceledColor  = color.RGBA{158, 158, 158, 200}
	blockTextColor      = color.RGBA{20, 24, 28, 230}
	blockShadowColor    = color.RGBA{0, 0, 0, 20}

	legendTextColor = color.RGBA{90, 95, 100, 220}
)

var dayTitles = map[timeutil.DayKey]string{
	timeutil.DayMonday:    "Mon",
	timeutil.DayTuesday:   "Tue",
	timeutil.DayWednesday: "Wed",
	timeutil.DayThursday:  "Thu",
	timeutil.DayFriday:    "Fri",
	timeutil.DaySaturday:  "Sat",
	timeutil.DaySunday:    "Sun",
}

// BoardItem is an Item plus the flags the renderer colors by.
type BoardItem struct {
	Item
	Emergency bool
}

// RenderWeekPNG draws the week board for the given window and items and
// returns it PNG-encoded. The geometry comes from Layout scaled to the
// canvas, so whatever the layout engine places is exactly what is drawn.
func RenderWeekPNG(week timeutil.WeekRange, items []BoardItem, win TimeWindow, now time.Time) ([]byte, error) {
	if err := win.Validate(); err != nil {
		return nil, err
	}

	// Scale the window to the drawable height regardless of its own
	// PixelsPerHour so the board always fills the canvas.
	drawWin := TimeWindow{
		StartHour:     win.StartHour,
		EndHour:       win.EndHour,
		PixelsPerHour: float64(imageHeight-headerHeight) / float64(win.EndHour-win.StartHour),
	}

	plain := make([]Item, len(items))
	flags := make(map[Item]BoardItem, len(items))
	for i, it := range items {
		plain[i] = it.Item
		flags[it.Item] = it
	}
	placed := Layout(plain, drawWin)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := float64(imageWidth-leftLabelsWidth-legendWidth) / totalDays

	drawHeader(dc, week)
	drawDayColumns(dc, week, now, dayWidth)
	drawHourLabels(dc, drawWin, dayWidth)
	drawBlocks(dc, placed, flags, dayWidth)
	drawLegend(dc)

	return encodePNG(dc)
}

func drawHeader(dc *gg.Context, week timeutil.WeekRange) {
	title := timeutil.FormatDate(week.Start) + " .. " + timeutil.FormatDate(week.End)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, imageWidth/2, headerHeight/4, 0.5, 0.5)
}

func drawDayColumns(dc *gg.Context, week timeutil.WeekRange, now time.Time, dayWidth float64) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for i := 0; i < totalDays; i++ {
		x := float64(leftLabelsWidth) + float64(i)*dayWidth
		date := week.Start.AddDate(0, 0, i)

		fill := evenDayColor
		if i%2 == 1 {
			fill = oddDayColor
		}
		if date.Equal(today) {
			fill = todayBgColor
		}

		dc.SetColor(fill)
		dc.DrawRectangle(x, headerHeight, dayWidth, imageHeight-headerHeight)
		dc.Fill()

		dc.SetColor(textColor)
		label := dayTitles[timeutil.WeekDays[i]] + " " + strconv.Itoa(date.Day())
		dc.DrawStringAnchored(label, x+dayWidth/2, headerHeight*0.7, 0.5, 0.5)
	}
}

func drawHourLabels(dc *gg.Context, win TimeWindow, dayWidth float64) {
	for hour := win.StartHour; hour <= win.EndHour; hour++ {
		y := float64(headerHeight) + float64(hour-win.StartHour)*win.PixelsPerHour

		dc.SetColor(hourLineColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(leftLabelsWidth, y, float64(leftLabelsWidth)+dayWidth*totalDays, y)
		dc.Stroke()

		dc.SetColor(hourLabelColor)
		dc.DrawStringAnchored(timeutil.TimeStringOf(hour*60), leftLabelsWidth/2, y, 0.5, 0.5)
	}
}

func drawBlocks(dc *gg.Context, placed []Placed, flags map[Item]BoardItem, dayWidth float64) {
	for _, p := range placed {
		x := float64(leftLabelsWidth) + float64(p.Column)*dayWidth + dayPaddingX
		y := float64(headerHeight) + p.Top
		w := dayWidth - 2*dayPaddingX
		h := p.Height
		if h < minBlockHeight {
			h = minBlockHeight
		}

		dc.SetColor(blockShadowColor)
		dc.DrawRoundedRectangle(x+shadowOffset, y+shadowOffset, w, h, blockRadius)
		dc.Fill()

		fill := blockRegularColor
		if item, ok := flags[p.Item]; ok && item.Emergency {
			fill = blockEmergencyColor
		}
		if p.Item.Canceled {
			fill = blockCanceledColor
		}
		dc.SetColor(fill)
		dc.DrawRoundedRectangle(x, y, w, h, blockRadius)
		dc.Fill()

		dc.SetColor(blockTextColor)
		label := timeutil.FormatTimeRange(p.Item.StartTime, p.Item.EndTime)
		if p.Item.Label != "" {
			label += " " + p.Item.Label
		}
		dc.DrawStringAnchored(label, x+w/2, y+h/2, 0.5, 0.5)
	}
}

func drawLegend(dc *gg.Context) {
	entries := []struct {
		name string
		col  color.Color
	}{
		{"regular", blockRegularColor},
		{"emergency", blockEmergencyColor},
		{"canceled", blockCanceledColor},
	}

	x := float64(imageWidth - legendWidth + 10)
	y := float64(headerHeight + 20)
	for _, e := range entries {
		dc.SetColor(e.col)
		dc.DrawRoundedRectangle(x, y, 16, 16, 3)
		dc.Fill()

		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored(e.name, x+24, y+8, 0, 0.5)
		y += 28
	}
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
