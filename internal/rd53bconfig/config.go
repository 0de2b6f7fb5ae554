// Package rd53bconfig loads the JSON configuration files the CLI accepts
// for completeness (§6): hardware-controller, chip, and trigger config.
// None of the register semantics these files describe are implemented -
// chip configuration is an out-of-scope external collaborator (§1). This
// package only decodes the JSON well enough for the CLI to report a
// missing or malformed file before attempting to decode anything.
package rd53bconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

// Hardware describes the readout controller the CLI would otherwise
// drive. Fields are opaque to the decoder; they exist only so the CLI
// can round-trip a config file a real run would supply.
type Hardware struct {
	Controller string            `json:"controller"`
	Channels   []uint8           `json:"channels"`
	Params     map[string]string `json:"params,omitempty"`
}

// Chip describes one chip's configuration file. ChipID's low 2 bits are
// the channel a stream's CH field carries - documented here, not
// implemented as arithmetic, since register writes are out of scope.
type Chip struct {
	ChipID     int               `json:"chip_id"`
	Name       string            `json:"name,omitempty"`
	Registers  map[string]int    `json:"registers,omitempty"`
	DataEnRaw  bool              `json:"data_en_raw"`
	PixelMasks map[string]string `json:"pixel_masks,omitempty"`
}

// Trigger describes the trigger-injection configuration file.
type Trigger struct {
	Count    int `json:"count"`
	Rate     int `json:"rate_hz"`
	Latency  int `json:"latency_bc"`
	Duration int `json:"duration_bc,omitempty"`
}

// LoadHardware reads and decodes a hardware config file.
func LoadHardware(path string) (*Hardware, error) {
	var h Hardware
	if err := loadJSON(path, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// LoadChip reads and decodes a chip config file.
func LoadChip(path string) (*Chip, error) {
	var c Chip
	if err := loadJSON(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadTrigger reads and decodes a trigger config file.
func LoadTrigger(path string) (*Trigger, error) {
	var t Trigger
	if err := loadJSON(path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
