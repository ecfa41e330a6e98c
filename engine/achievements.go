package engine

import (
	"fmt"

	"github.com/samber/lo"
)

// AchievementID identifies one entry of the fixed achievement catalog
type AchievementID string

const (
	AchFirstWin         AchievementID = "first-win"
	AchBigWinner        AchievementID = "big-winner"
	AchPlayer           AchievementID = "player"
	AchStarHunter       AchievementID = "star-hunter"
	AchLevel5           AchievementID = "level-5"
	AchLevel10          AchievementID = "level-10"
	AchLevel20          AchievementID = "level-20"
	AchLuckyStreak      AchievementID = "lucky-streak"
	AchDiamondCollector AchievementID = "diamond-collector"
	AchHotWire          AchievementID = "hot-wire"
	AchGrapeKing        AchievementID = "grape-king"
	AchPrecisionShooter AchievementID = "precision-shooter"
	AchLightningFast    AchievementID = "lightning-fast"
	AchSlotKing         AchievementID = "slot-king"
	AchCircusDirector   AchievementID = "circus-director"
	AchMoneyMachine     AchievementID = "money-machine"
)

// Achievement is one catalog entry. Unlocked is a one-way flag; the reward
// pays into the banked account exactly once, at the unlock transition.
type Achievement struct {
	Unlocked bool  `json:"unlocked"`
	Reward   int64 `json:"reward"`
}

// achievementRewards is the closed catalog with its one-time rewards
var achievementRewards = map[AchievementID]int64{
	AchFirstWin:         10,
	AchBigWinner:        100,
	AchPlayer:           50,
	AchStarHunter:       200,
	AchLevel5:           50,
	AchLevel10:          100,
	AchLevel20:          250,
	AchLuckyStreak:      75,
	AchDiamondCollector: 300,
	AchHotWire:          150,
	AchGrapeKing:        80,
	AchPrecisionShooter: 60,
	AchLightningFast:    150,
	AchSlotKing:         1000,
	AchCircusDirector:   500,
	AchMoneyMachine:     750,
}

// symbolAchievements maps three-of-a-kind symbols to their achievement
var symbolAchievements = map[Symbol]AchievementID{
	SymbolStar:   AchStarHunter,
	SymbolBell:   AchHotWire,
	SymbolGrape:  AchGrapeKing,
	SymbolCherry: AchPrecisionShooter,
}

// AchievementCatalog returns every achievement ID
func AchievementCatalog() []AchievementID {
	return lo.Keys(achievementRewards)
}

// defaultAchievements builds the all-locked catalog
func defaultAchievements() map[AchievementID]*Achievement {
	out := make(map[AchievementID]*Achievement, len(achievementRewards))
	for id, reward := range achievementRewards {
		out[id] = &Achievement{Reward: reward}
	}
	return out
}

// checkAchievements evaluates the general progress predicates. All
// predicates are monotonic, so re-evaluation is safe; unlock fires at most
// once per ID. Callers must hold e.mu.
func (e *Engine) checkAchievements() {
	s := e.state
	if s.TotalWinnings > 0 {
		e.unlock(AchFirstWin)
	}
	if s.TotalWinnings >= 1000 {
		e.unlock(AchBigWinner)
	}
	if s.TotalWinnings >= 5000 {
		e.unlock(AchDiamondCollector)
	}
	if s.TotalWinnings >= 10000 {
		e.unlock(AchMoneyMachine)
	}
	if s.TotalSpins >= 100 {
		e.unlock(AchPlayer)
	}
	if s.TotalSpins >= 500 {
		e.unlock(AchLightningFast)
	}
	if s.ConsecutiveWins >= 5 {
		e.unlock(AchLuckyStreak)
	}
	if s.PlayerLevel >= 50 {
		e.unlock(AchSlotKing)
	}
	if len(s.WonSymbols) >= len(symbolOrder) {
		e.unlock(AchCircusDirector)
	}
}

// checkLevelAchievements evaluates the level thresholds, invoked once per
// level-up step. Callers must hold e.mu.
func (e *Engine) checkLevelAchievements() {
	if e.state.PlayerLevel >= 5 {
		e.unlock(AchLevel5)
	}
	if e.state.PlayerLevel >= 10 {
		e.unlock(AchLevel10)
	}
	if e.state.PlayerLevel >= 20 {
		e.unlock(AchLevel20)
	}
}

// checkSymbolAchievements evaluates the symbol-specific achievements for a
// three-of-a-kind on the current spin only, never retroactively.
// Callers must hold e.mu.
func (e *Engine) checkSymbolAchievements(sym Symbol) {
	if id, ok := symbolAchievements[sym]; ok {
		e.unlock(id)
	}
}

// unlock flips the achievement and pays its reward into the banked account.
// A second call for the same ID is a no-op. Callers must hold e.mu.
func (e *Engine) unlock(id AchievementID) {
	ach, ok := e.state.Achievements[id]
	if !ok || ach.Unlocked {
		return
	}
	ach.Unlocked = true
	e.credit(CurrencyAccount, ach.Reward)

	e.queue(Event{Type: EventAchievementUnlocked, Achievement: id, Reward: ach.Reward})
	e.notify(SeveritySuccess, fmt.Sprintf("Achievement unlocked! +%d bonus!", ach.Reward))
}

// UnlockedAchievements lists the achievements unlocked so far
func (e *Engine) UnlockedAchievements() []AchievementID {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]AchievementID, 0, len(e.state.Achievements))
	for id, ach := range e.state.Achievements {
		if ach.Unlocked {
			ids = append(ids, id)
		}
	}
	return ids
}
