package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/slot-machine-core/engine"
	"github.com/Digital-Creators-Team/slot-machine-core/errors"
)

// maxBackupSize bounds the import payload; real backups are a few KB
const maxBackupSize = 1 << 20

// GameHandler exposes the engine over HTTP
type GameHandler struct {
	game    *engine.Engine
	spinner *engine.AutoSpinner
	logger  zerolog.Logger
}

// NewGameHandler creates a game handler
func NewGameHandler(game *engine.Engine, spinner *engine.AutoSpinner, logger zerolog.Logger) *GameHandler {
	return &GameHandler{
		game:    game,
		spinner: spinner,
		logger:  logger.With().Str("handler", "game").Logger(),
	}
}

// StateResponse is the full machine view for the presentation layer
type StateResponse struct {
	State   *engine.GameState    `json:"state"`
	Phase   engine.SpinPhase     `json:"phase"`
	Level   engine.LevelProgress `json:"level"`
	Bonuses []engine.BonusStatus `json:"bonuses"`
}

// GetState returns the current game state.
// Route: GET /api/v1/state
func (h *GameHandler) GetState(c *gin.Context) {
	OK(c, StateResponse{
		State:   h.game.State(),
		Phase:   h.game.Phase(),
		Level:   h.game.Progress(),
		Bonuses: h.game.Bonuses(time.Now()),
	})
}

// GetStats returns session statistics.
// Route: GET /api/v1/stats
func (h *GameHandler) GetStats(c *gin.Context) {
	OK(c, h.game.Stats())
}

// GetSymbols returns the symbol catalog with multipliers.
// Route: GET /api/v1/symbols
func (h *GameHandler) GetSymbols(c *gin.Context) {
	type symbolInfo struct {
		Name       engine.Symbol `json:"name"`
		Emoji      string        `json:"emoji"`
		Multiplier int64         `json:"multiplier"`
	}
	symbols := make([]symbolInfo, 0, len(engine.AllSymbols()))
	for _, s := range engine.AllSymbols() {
		symbols = append(symbols, symbolInfo{
			Name:       s,
			Emoji:      s.Emoji(),
			Multiplier: s.Multiplier(),
		})
	}
	OK(c, gin.H{"symbols": symbols})
}

// Spin runs a full spin (debit, draw, settle).
// Route: POST /api/v1/spin
func (h *GameHandler) Spin(c *gin.Context) {
	outcome, err := h.game.Spin(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, outcome)
}

// BeginSpin debits the wager and draws the reels without settling, so the
// facade can pace reel visuals.
// Route: POST /api/v1/spin/begin
func (h *GameHandler) BeginSpin(c *gin.Context) {
	start, err := h.game.BeginSpin(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, start)
}

// SettleSpin resolves the in-flight spin.
// Route: POST /api/v1/spin/settle
func (h *GameHandler) SettleSpin(c *gin.Context) {
	outcome, err := h.game.SettleSpin(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, outcome)
}

// BetRequest sets the wager to an absolute amount
type BetRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// SetBet sets the wager.
// Route: POST /api/v1/bet
func (h *GameHandler) SetBet(c *gin.Context) {
	var req BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "invalid bet request"))
		return
	}
	if err := h.game.SetBet(c.Request.Context(), req.Amount); err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, gin.H{"betAmount": req.Amount})
}

// IncreaseBet raises the wager by one.
// Route: POST /api/v1/bet/increase
func (h *GameHandler) IncreaseBet(c *gin.Context) {
	bet, err := h.game.IncreaseBet(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, gin.H{"betAmount": bet})
}

// DecreaseBet lowers the wager by one.
// Route: POST /api/v1/bet/decrease
func (h *GameHandler) DecreaseBet(c *gin.Context) {
	bet, err := h.game.DecreaseBet(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, gin.H{"betAmount": bet})
}

// QuickBet sets the wager clamped into the allowed range.
// Route: POST /api/v1/bet/quick
func (h *GameHandler) QuickBet(c *gin.Context) {
	var req BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "invalid bet request"))
		return
	}
	bet, err := h.game.QuickBet(c.Request.Context(), req.Amount)
	if err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, gin.H{"betAmount": bet})
}

// TransferRequest moves funds between the machine balance and the account
type TransferRequest struct {
	Direction engine.TransferDirection `json:"direction" binding:"required"`
	Amount    int64                    `json:"amount" binding:"required"`
}

// Transfer moves funds between the spendable balance and the banked account.
// Route: POST /api/v1/transfer
func (h *GameHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "invalid transfer request"))
		return
	}
	if err := h.game.Transfer(c.Request.Context(), req.Direction, req.Amount); err != nil {
		HandleAppError(c, err)
		return
	}
	state := h.game.State()
	OK(c, gin.H{
		"balance":        state.Balance,
		"accountBalance": state.AccountBalance,
	})
}

// GetBonuses returns both bonus cooldowns and the claim history.
// Route: GET /api/v1/bonus
func (h *GameHandler) GetBonuses(c *gin.Context) {
	OK(c, gin.H{
		"bonuses": h.game.Bonuses(time.Now()),
		"history": h.game.BonusHistory(),
	})
}

// BonusClaimRequest names the bonus to claim
type BonusClaimRequest struct {
	Kind engine.BonusKind `json:"kind" binding:"required"`
}

// ClaimBonus claims a cooldown-gated bonus.
// Route: POST /api/v1/bonus/claim
func (h *GameHandler) ClaimBonus(c *gin.Context) {
	var req BonusClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "invalid bonus claim request"))
		return
	}
	if err := h.game.ClaimBonus(c.Request.Context(), req.Kind); err != nil {
		HandleAppError(c, err)
		return
	}
	state := h.game.State()
	OK(c, gin.H{
		"accountBalance": state.AccountBalance,
		"history":        h.game.BonusHistory(),
	})
}

// GetAchievements returns the full achievement map.
// Route: GET /api/v1/achievements
func (h *GameHandler) GetAchievements(c *gin.Context) {
	OK(c, gin.H{
		"achievements": h.game.State().Achievements,
		"unlocked":     h.game.UnlockedAchievements(),
	})
}

// StartAutoSpin begins continuous spinning.
// Route: POST /api/v1/autospin/start
func (h *GameHandler) StartAutoSpin(c *gin.Context) {
	if err := h.spinner.Start(); err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, gin.H{"active": true})
}

// StopAutoSpin halts continuous spinning.
// Route: POST /api/v1/autospin/stop
func (h *GameHandler) StopAutoSpin(c *gin.Context) {
	h.spinner.Stop()
	OK(c, gin.H{"active": false})
}

// GetAutoSpin reports whether auto-spin is running.
// Route: GET /api/v1/autospin
func (h *GameHandler) GetAutoSpin(c *gin.Context) {
	OK(c, gin.H{"active": h.spinner.Active()})
}

// ExportBackup returns the versioned backup document as a download.
// Route: GET /api/v1/backup
func (h *GameHandler) ExportBackup(c *gin.Context) {
	data, filename, err := h.game.ExportBackup()
	if err != nil {
		HandleAppError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// ImportBackup restores state from an uploaded backup document.
// Route: POST /api/v1/backup
func (h *GameHandler) ImportBackup(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBackupSize))
	if err != nil {
		BadRequest(c, errors.Wrap(err, errors.ErrInvalidRequest, "failed to read backup payload"))
		return
	}
	if err := h.game.ImportBackup(c.Request.Context(), data); err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, StateResponse{
		State:   h.game.State(),
		Phase:   h.game.Phase(),
		Level:   h.game.Progress(),
		Bonuses: h.game.Bonuses(time.Now()),
	})
}

// Reset discards all progress and restores the default state.
// Route: POST /api/v1/reset
func (h *GameHandler) Reset(c *gin.Context) {
	h.spinner.Stop()
	if err := h.game.Reset(c.Request.Context()); err != nil {
		HandleAppError(c, err)
		return
	}
	OK(c, h.game.State())
}
