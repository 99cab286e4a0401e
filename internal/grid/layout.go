// Package grid turns day-bucketed clinic sessions into renderable week-board
// geometry. Layout is pure: the same items and window always produce the
// same placement, with no hidden state.
package grid

import (
	"fmt"
	"sort"

	"github.com/academyops/clinicboard/internal/timeutil"
	"github.com/google/uuid"
)

// SnapMinutes is the pointer-selection granularity of the duration editor.
const SnapMinutes = 10

// TimeWindow is the visible vertical span of a board, configured once per
// screen.
type TimeWindow struct {
	StartHour     int
	EndHour       int
	PixelsPerHour float64
}

// Validate enforces 0 <= StartHour < EndHour <= 24.
func (w TimeWindow) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		return fmt.Errorf("invalid time window %d..%d", w.StartHour, w.EndHour)
	}
	if w.PixelsPerHour <= 0 {
		return fmt.Errorf("pixels per hour must be positive, got %v", w.PixelsPerHour)
	}
	return nil
}

// Height returns the full pixel height of the window.
func (w TimeWindow) Height() float64 {
	return float64(w.EndHour-w.StartHour) * w.PixelsPerHour
}

// Item is one time-bounded block to place on the board.
type Item struct {
	SessionID uuid.UUID
	Day       timeutil.DayKey
	StartTime string // HH:MM
	EndTime   string // HH:MM
	Label     string
	Canceled  bool
}

// Placed is an Item with its computed geometry. Column is the day column
// (Monday = 0); ZOrder is the stacking position among same-day siblings,
// later (higher) values drawn on top.
type Placed struct {
	Item   Item
	Column int
	Top    float64
	Height float64
	ZOrder int
}

// Layout computes non-negative pixel geometry for every placeable item.
// Per day, items sort by start time ascending with end time (shorter
// first) as the tie-break, so stacking order is stable. Items partially
// outside the window are truncated to it, never hidden; items wholly
// outside it, and items whose times do not parse, produce no geometry.
//
// Same-day overlap renders as a plain stack: sessions of one teacher and
// branch are not expected to overlap, so the board does no lane packing.
func Layout(items []Item, win TimeWindow) []Placed {
	winStart := win.StartHour * 60
	winEnd := win.EndHour * 60

	byDay := make(map[timeutil.DayKey][]Item)
	for _, item := range items {
		if item.Day.Index() < 0 {
			continue
		}
		byDay[item.Day] = append(byDay[item.Day], item)
	}

	var placed []Placed
	for _, day := range timeutil.WeekDays {
		bucket := byDay[day]
		if len(bucket) == 0 {
			continue
		}

		sort.SliceStable(bucket, func(i, j int) bool {
			si, oki := timeutil.MinutesSinceMidnight(bucket[i].StartTime)
			sj, okj := timeutil.MinutesSinceMidnight(bucket[j].StartTime)
			if !oki || !okj {
				return oki && !okj
			}
			if si != sj {
				return si < sj
			}
			ei, _ := timeutil.MinutesSinceMidnight(bucket[i].EndTime)
			ej, _ := timeutil.MinutesSinceMidnight(bucket[j].EndTime)
			return ei < ej
		})

		z := 0
		for _, item := range bucket {
			start, ok := timeutil.MinutesSinceMidnight(item.StartTime)
			if !ok {
				continue
			}
			end, ok := timeutil.MinutesSinceMidnight(item.EndTime)
			if !ok || end <= start {
				continue
			}
			if end <= winStart || start >= winEnd {
				continue
			}

			top := float64(start-winStart) * win.PixelsPerHour / 60
			bottom := float64(end-winStart) * win.PixelsPerHour / 60
			if top < 0 {
				top = 0
			}
			if bottom > win.Height() {
				bottom = win.Height()
			}

			placed = append(placed, Placed{
				Item:   item,
				Column: day.Index(),
				Top:    top,
				Height: bottom - top,
				ZOrder: z,
			})
			z++
		}
	}

	return placed
}

// Selection is a user-drawn calendar range: a concrete date plus a start
// and exclusive end time.
type Selection struct {
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

// PointerToRange maps a raw pointer gesture on a day column back into a
// calendar selection. Minutes snap to SnapMinutes steps and clamp to the
// window; when both ends snap to the same value the end is pushed one
// step forward (or the start one step back at the window's bottom edge)
// so the result always has StartTime < EndTime.
func PointerToRange(week timeutil.WeekRange, dayIndex, pointerStartMinute, pointerEndMinute int, win TimeWindow) Selection {
	if dayIndex < 0 {
		dayIndex = 0
	}
	if dayIndex > 6 {
		dayIndex = 6
	}

	if pointerEndMinute < pointerStartMinute {
		pointerStartMinute, pointerEndMinute = pointerEndMinute, pointerStartMinute
	}

	winStart := win.StartHour * 60
	winEnd := win.EndHour * 60

	start := snap(pointerStartMinute)
	end := snap(pointerEndMinute)

	start = clamp(start, winStart, winEnd)
	end = clamp(end, winStart, winEnd)

	if end <= start {
		end = start + SnapMinutes
		if end > winEnd {
			end = winEnd
			start = end - SnapMinutes
		}
	}

	date := week.Start.AddDate(0, 0, dayIndex)

	return Selection{
		Date:      timeutil.FormatDate(date),
		StartTime: timeutil.TimeStringOf(start),
		EndTime:   timeutil.TimeStringOf(end),
	}
}

// snap rounds to the nearest SnapMinutes step.
func snap(minutes int) int {
	half := SnapMinutes / 2
	if minutes >= 0 {
		return (minutes + half) / SnapMinutes * SnapMinutes
	}
	return -((-minutes + half) / SnapMinutes * SnapMinutes)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
