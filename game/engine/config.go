package engine

import (
	"fmt"
	"strings"
)

// GameConfig holds the rule options and message texts of a game preset.
// Board size and fleet composition are fixed and not configurable.
type GameConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	// MoatReveal marks the empty ring around a sunk ship as misses.
	MoatReveal bool `json:"moat_reveal" yaml:"moat_reveal"`
	// HitRetainsTurn lets a side keep firing after a hit. When false turns
	// alternate after every shot that lands.
	HitRetainsTurn bool     `json:"hit_retains_turn" yaml:"hit_retains_turn"`
	Messages       Messages `json:"messages" yaml:"messages"`
}

// Messages are the texts reported for shot outcomes and game end
type Messages struct {
	Welcome      string `json:"welcome" yaml:"welcome"`
	Hit          string `json:"hit" yaml:"hit"`
	Miss         string `json:"miss" yaml:"miss"`
	Sunk         string `json:"sunk" yaml:"sunk"`
	AlreadyFired string `json:"already_fired" yaml:"already_fired"`
	Victory      string `json:"victory" yaml:"victory"`
	Defeat       string `json:"defeat" yaml:"defeat"`
}

// DefaultGameConfig returns the classic rules: moat reveal on, hits keep the turn.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Classic rules: a hit keeps the turn and sunk ships reveal their surroundings",
		MoatReveal:     true,
		HitRetainsTurn: true,
		Messages: Messages{
			Welcome:      "Place your fleet: one 4-cell, two 3-cell, three 2-cell and four 1-cell ships.",
			Hit:          "Hit!",
			Miss:         "Miss.",
			Sunk:         "Hit! A %d-cell ship was sunk!",
			AlreadyFired: "That cell was already fired upon. Try again.",
			Victory:      "Victory! The enemy fleet is sunk.",
			Defeat:       "Defeat! Your fleet is sunk.",
		},
	}
}

// ValidateGameConfig checks that a configuration is complete
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	required := map[string]string{
		"messages.hit":           config.Messages.Hit,
		"messages.miss":          config.Messages.Miss,
		"messages.sunk":          config.Messages.Sunk,
		"messages.already_fired": config.Messages.AlreadyFired,
		"messages.victory":       config.Messages.Victory,
		"messages.defeat":        config.Messages.Defeat,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("config validation: %s is required", key)
		}
	}

	if err := CheckSunkMessage(config.Messages.Sunk); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// CheckSunkMessage requires exactly one formatting verb in the sunk message,
// a %d for the ship size. "%%" is a literal percent sign.
func CheckSunkMessage(msg string) error {
	verbs, sizes := 0, 0
	for i := 0; i < len(msg); i++ {
		if msg[i] != '%' {
			continue
		}
		if i+1 < len(msg) && msg[i+1] == '%' {
			i++
			continue
		}
		verbs++
		if i+1 < len(msg) && msg[i+1] == 'd' {
			sizes++
		}
	}
	if verbs != 1 || sizes != 1 {
		return fmt.Errorf("messages.sunk must contain exactly one %%d and no other verbs: %q", msg)
	}
	return nil
}
