package audio

import (
	"fmt"
	"strings"
)

// Registry enumerates host audio endpoints through the active adapter. The
// OS is the source of truth: every List call re-enumerates, nothing is
// cached across calls. Safe for concurrent use; enumeration is a read-only
// OS query.
type Registry struct {
	adapter Adapter
}

func NewRegistry(a Adapter) *Registry {
	return &Registry{adapter: a}
}

// List returns a fresh, ordered snapshot of endpoints matching dir.
func (r *Registry) List(dir Direction) ([]Device, error) {
	devices, err := r.adapter.Devices(dir)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s devices: %w", dir, err)
	}
	return devices, nil
}

// Default returns the OS default endpoint for dir.
func (r *Registry) Default(dir Direction) (Device, error) {
	devices, err := r.List(dir)
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if d.Default {
			return d, nil
		}
	}
	if len(devices) > 0 {
		return devices[0], nil
	}
	return Device{}, fmt.Errorf("no default %s device: %w", dir, ErrDeviceUnavailable)
}

// Resolve finds a device by name (case-insensitive). Virtual cables often
// present one name as both an input and an output endpoint; ties are broken
// by preferring the entry whose direction matches dir, then the OS default.
func (r *Registry) Resolve(name string, dir Direction) (Device, error) {
	devices, err := r.List(DirAny)
	if err != nil {
		return Device{}, err
	}

	var matches []Device
	for _, d := range devices {
		if strings.EqualFold(d.Name, name) || strings.EqualFold(d.ID, name) {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		return Device{}, fmt.Errorf("device %q not found: %w", name, ErrDeviceUnavailable)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	if dir != DirAny {
		var directional []Device
		for _, d := range matches {
			if d.Direction == dir {
				directional = append(directional, d)
			}
		}
		if len(directional) == 1 {
			return directional[0], nil
		}
		if len(directional) > 1 {
			matches = directional
		}
	}

	for _, d := range matches {
		if d.Default {
			return d, nil
		}
	}
	return matches[0], nil
}
