// Package config loads game rule presets from a directory.
//
// A preset is a JSON or YAML file holding an engine.GameConfig: a name and
// description, the moat_reveal and hit_retains_turn rule switches, and the
// message texts reported for shots and game end. Board size and fleet
// composition are fixed and never read from presets.
//
// Presets shipped in configs/:
//   - classic.json: a hit keeps the turn, sunk ships reveal their moat
//   - alternating.json: turns alternate after every shot
//   - no_moat.yaml: sunk ships reveal nothing around them
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadConfig("no_moat")
//	presets, err := manager.ListConfigs()
//
// When the directory holds no loadable preset the manager falls back to
// engine.DefaultGameConfig.
package config
