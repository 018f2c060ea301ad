package dreadroot

import (
	"fmt"
	"strings"
)

// ReplacementPolicy decides what happens to the original instance after a
// tag strip produced its replacement on the creation path.
type ReplacementPolicy string

const (
	// RetainOriginal leaves the original for the world's own lifecycle to
	// collect.
	RetainOriginal ReplacementPolicy = "retain"
	// DestroyOriginal removes the original from the world as soon as the
	// replacement has been handed to the creation event.
	DestroyOriginal ReplacementPolicy = "destroy"
)

func ParsePolicy(raw string) (ReplacementPolicy, error) {
	switch ReplacementPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RetainOriginal:
		return RetainOriginal, nil
	case DestroyOriginal:
		return DestroyOriginal, nil
	default:
		return "", fmt.Errorf("unknown replacement policy %q", raw)
	}
}
