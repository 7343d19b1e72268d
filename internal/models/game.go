package models

// Game years. The simulation starts at 1900 and halts once the clock reaches
// 2024; no tick is scheduled past the terminal year.
const (
	StartYear    = 1900
	TerminalYear = 2024
)

// GameClock is the singleton game state row. It is the single source of
// truth for the current year: the scheduler increments it, every other
// component reads it, and nothing holds it in process memory across requests.
type GameClock struct {
	ID          uint `gorm:"primaryKey" json:"game_id"`
	CurrentYear int  `gorm:"not null;default:1900" json:"current_year"`
	GameRunning bool `gorm:"not null;default:false" json:"game_running"`
}
