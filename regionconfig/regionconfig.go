// Package regionconfig decodes a declarative TOML region table into
// msp430.Region values, scoped down to in-memory byte slices: no file path
// resolution, no save path, since the core never owns a file system.
package regionconfig

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/grahame-white/msp430emu/msp430"
)

// regionTable is the TOML document shape: a top-level array of tables
// under the "region" key.
type regionTable struct {
	Region []regionEntry `toml:"region"`
}

type regionEntry struct {
	Name        string `toml:"name"`
	Start       uint16 `toml:"start"`
	End         uint16 `toml:"end"`
	Read        bool   `toml:"read"`
	Write       bool   `toml:"write"`
	Execute     bool   `toml:"execute"`
	Description string `toml:"description"`
}

// Parse decodes a TOML region table into a Region slice suitable for
// msp430.NewMemoryMap. A malformed document produces an error; the
// resulting regions are not validated for overlap here; NewMemoryMap does
// that.
func Parse(data []byte) ([]msp430.Region, error) {
	var table regionTable
	if _, err := toml.Decode(string(data), &table); err != nil {
		return nil, fmt.Errorf("regionconfig: %w", err)
	}

	regions := make([]msp430.Region, 0, len(table.Region))
	for _, e := range table.Region {
		var perm msp430.Permission
		if e.Read {
			perm |= msp430.PermRead
		}
		if e.Write {
			perm |= msp430.PermWrite
		}
		if e.Execute {
			perm |= msp430.PermExecute
		}
		regions = append(regions, msp430.Region{
			Name:        msp430.RegionName(e.Name),
			Start:       e.Start,
			End:         e.End,
			Permissions: perm,
			Description: e.Description,
		})
	}
	return regions, nil
}

// Encode renders a region slice back to its TOML document form, the
// counterpart of Parse, mirrored from config.Config's Encode/Decode
// symmetry.
func Encode(regions []msp430.Region) ([]byte, error) {
	table := regionTable{Region: make([]regionEntry, len(regions))}
	for i, r := range regions {
		table.Region[i] = regionEntry{
			Name:        string(r.Name),
			Start:       r.Start,
			End:         r.End,
			Read:        r.Permissions&msp430.PermRead != 0,
			Write:       r.Permissions&msp430.PermWrite != 0,
			Execute:     r.Permissions&msp430.PermExecute != 0,
			Description: r.Description,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(table); err != nil {
		return nil, fmt.Errorf("regionconfig: %w", err)
	}
	return buf.Bytes(), nil
}
