package engine

import (
	"fmt"
	"math"
)

// xpSource tags an XP award with its origin
type xpSource string

const (
	xpSourceSpin xpSource = "spin"
	xpSourceWin  xpSource = "win"
)

// XPForLevel returns the cumulative XP required to reach level.
// Level 1 costs nothing; beyond that the curve is floor(100 * (level-1)^1.5),
// strictly increasing until it saturates at MaxInt64.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	cost := math.Floor(100 * math.Pow(float64(level-1), 1.5))
	if cost >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(cost)
}

// LevelForXP returns the largest level whose cumulative cost is covered by
// totalXP. The curve is inverted analytically and the guess corrected by at
// most a step or two, so restored save documents with arbitrarily large XP
// resolve without walking the curve level by level.
func LevelForXP(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}
	level := int(math.Pow(float64(totalXP)/100, 2.0/3.0)) + 1
	for level > 1 && totalXP < XPForLevel(level) {
		level--
	}
	for XPForLevel(level+1) > XPForLevel(level) && totalXP >= XPForLevel(level+1) {
		level++
	}
	return level
}

// awardXP adds XP and recomputes the level. A single large award can cross
// several thresholds; each crossed level raises its own level-up event and
// re-runs the level achievements. Callers must hold e.mu.
func (e *Engine) awardXP(amount int64, source xpSource) {
	if amount <= 0 {
		return
	}
	e.state.TotalXP += amount
	if source == xpSourceWin {
		e.state.WonXP += amount
	}

	for e.state.TotalXP >= XPForLevel(e.state.PlayerLevel+1) {
		e.state.PlayerLevel++
		e.queue(Event{Type: EventLevelUp, Level: e.state.PlayerLevel})
		e.notify(SeveritySuccess, fmt.Sprintf("Level up! Now level %d!", e.state.PlayerLevel))
		e.checkLevelAchievements()
	}
}

// LevelProgress describes progress inside the current level, for display
type LevelProgress struct {
	Level       int   `json:"level"`
	TotalXP     int64 `json:"totalXP"`
	XPIntoLevel int64 `json:"xpIntoLevel"`
	XPForNext   int64 `json:"xpForNext"`
	NextLevelXP int64 `json:"nextLevelXP"`
}

// Progress reports the player's position on the level curve
func (e *Engine) Progress() LevelProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	levelStart := XPForLevel(e.state.PlayerLevel)
	nextLevel := XPForLevel(e.state.PlayerLevel + 1)
	return LevelProgress{
		Level:       e.state.PlayerLevel,
		TotalXP:     e.state.TotalXP,
		XPIntoLevel: e.state.TotalXP - levelStart,
		XPForNext:   nextLevel - levelStart,
		NextLevelXP: nextLevel,
	}
}
