package enums

import "fmt"

// EntryKind tags the record kinds merged into a book statement.
type EntryKind string

const (
	EntryKindLine    EntryKind = "line"
	EntryKindPayment EntryKind = "payment"
)

var validEntryKinds = []EntryKind{
	EntryKindLine,
	EntryKindPayment,
}

// String implements fmt.Stringer.
func (k EntryKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known EntryKind.
func (k EntryKind) IsValid() bool {
	for _, candidate := range validEntryKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseEntryKind converts raw input into an EntryKind.
func ParseEntryKind(value string) (EntryKind, error) {
	for _, candidate := range validEntryKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entry kind %q", value)
}
