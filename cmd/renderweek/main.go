// renderweek renders a sample week board to a PNG file, for eyeballing
// layout and palette changes without a database or server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/academyops/clinicboard/internal/grid"
	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/google/uuid"
)

func main() {
	week := timeutil.WeekRangeOf(time.Now())

	items := []grid.BoardItem{
		{Item: grid.Item{SessionID: uuid.New(), Day: timeutil.DayMonday, StartTime: "09:00", EndTime: "10:00", Label: "clinic"}},
		{Item: grid.Item{SessionID: uuid.New(), Day: timeutil.DayMonday, StartTime: "14:00", EndTime: "15:30", Label: "clinic"}},
		{Item: grid.Item{SessionID: uuid.New(), Day: timeutil.DayTuesday, StartTime: "10:00", EndTime: "11:00", Label: "makeup"}, Emergency: true},
		{Item: grid.Item{SessionID: uuid.New(), Day: timeutil.DayWednesday, StartTime: "16:00", EndTime: "17:00", Label: "clinic", Canceled: true}},
		{Item: grid.Item{SessionID: uuid.New(), Day: timeutil.DayFriday, StartTime: "07:30", EndTime: "09:00", Label: "early"}},
		{Item: grid.Item{SessionID: uuid.New(), Day: timeutil.DaySaturday, StartTime: "11:00", EndTime: "12:40", Label: "weekend"}},
	}

	window := grid.TimeWindow{StartHour: 8, EndHour: 20, PixelsPerHour: 60}

	png, err := grid.RenderWeekPNG(week, items, window, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	out := "week.png"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", out, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%d bytes)\n", out, len(png))
}
