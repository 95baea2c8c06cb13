package bwtree

import (
	"fmt"

	"github.com/KilimcininKorOglu/bwtree/logging"
)

// Tuning constants.
const (
	// DefaultLeafSlotMax is the default maximum number of distinct keys per
	// leaf page.
	DefaultLeafSlotMax = 128

	// DefaultInnerSlotMax is the default maximum number of separator keys
	// per inner page.
	DefaultInnerSlotMax = 128

	// DefaultDeltaThreshold is the default chain length beyond which a
	// traversal volunteers to consolidate the page.
	DefaultDeltaThreshold = 8

	// DefaultMappingTableCapacity is the default upper bound on PIDs
	// allocated over the lifetime of a tree instance.
	DefaultMappingTableCapacity = 1 << 22

	// MinSlotMax is the smallest admissible slot bound for either page kind.
	MinSlotMax = 8
)

// Options configures a Tree instance. New fills every zero field with its
// default, so the zero value yields the same configuration as
// DefaultOptions.
type Options struct {
	// LeafSlotMax is the maximum number of distinct keys a base leaf page
	// may hold before it is split. Minimum MinSlotMax.
	LeafSlotMax int

	// InnerSlotMax is the maximum number of separator keys a base inner
	// page may hold before it is split. Minimum MinSlotMax.
	InnerSlotMax int

	// DeltaThreshold is the delta chain length past which a traversal
	// schedules consolidation of the page. Consolidation is a performance
	// device only; any positive value is correct.
	DeltaThreshold int

	// MappingTableCapacity bounds the total number of PIDs the tree may
	// ever allocate. PIDs are never reused within a tree's lifetime.
	MappingTableCapacity int

	// Logger receives structural events (root promotion, splits,
	// consolidations) at debug level. Defaults to a no-op logger.
	Logger logging.Logger
}

// DefaultOptions returns the tuned default configuration.
func DefaultOptions() Options {
	return Options{
		LeafSlotMax:          DefaultLeafSlotMax,
		InnerSlotMax:         DefaultInnerSlotMax,
		DeltaThreshold:       DefaultDeltaThreshold,
		MappingTableCapacity: DefaultMappingTableCapacity,
	}
}

// SlotsForNodeSize derives a slot bound from a target node byte size and the
// byte sizes of a key and an entry, with a floor of MinSlotMax.
func SlotsForNodeSize(nodeBytes, keyBytes, entryBytes int) int {
	if keyBytes+entryBytes <= 0 {
		return MinSlotMax
	}
	slots := nodeBytes / (keyBytes + entryBytes)
	if slots < MinSlotMax {
		return MinSlotMax
	}
	return slots
}

// validate checks the options and fills defaults for zero fields.
func (o *Options) validate() error {
	if o.LeafSlotMax == 0 {
		o.LeafSlotMax = DefaultLeafSlotMax
	}
	if o.InnerSlotMax == 0 {
		o.InnerSlotMax = DefaultInnerSlotMax
	}
	if o.DeltaThreshold == 0 {
		o.DeltaThreshold = DefaultDeltaThreshold
	}
	if o.MappingTableCapacity == 0 {
		o.MappingTableCapacity = DefaultMappingTableCapacity
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}

	if o.LeafSlotMax < MinSlotMax {
		return fmt.Errorf("%w: LeafSlotMax %d below minimum %d", ErrInvalidOptions, o.LeafSlotMax, MinSlotMax)
	}
	if o.InnerSlotMax < MinSlotMax {
		return fmt.Errorf("%w: InnerSlotMax %d below minimum %d", ErrInvalidOptions, o.InnerSlotMax, MinSlotMax)
	}
	if o.DeltaThreshold < 1 {
		return fmt.Errorf("%w: DeltaThreshold %d must be positive", ErrInvalidOptions, o.DeltaThreshold)
	}
	if o.MappingTableCapacity < 2 {
		return fmt.Errorf("%w: MappingTableCapacity %d too small", ErrInvalidOptions, o.MappingTableCapacity)
	}
	return nil
}
