package cliconfig

import "time"

// DurationValue is a pflag.Value for duration settings that also accepts the
// bare integers valid in the config file and environment.
type DurationValue struct {
	dst  *time.Duration
	unit time.Duration
}

// NewDurationValue binds dst, reading bare integers as a count of unit.
func NewDurationValue(dst *time.Duration, unit time.Duration) *DurationValue {
	return &DurationValue{dst: dst, unit: unit}
}

func (v *DurationValue) String() string {
	if v.dst == nil {
		return "0s"
	}
	return v.dst.String()
}

// Set parses value with ParseDuration.
func (v *DurationValue) Set(value string) error {
	d, err := ParseDuration(value, v.unit)
	if err != nil {
		return err
	}
	*v.dst = d
	return nil
}

// Type names the value in help output.
func (v *DurationValue) Type() string {
	return "duration"
}
