package sources

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/news-comb/app/registry"
)

// UnknownSourceError reports a feed key missing from the registry.
type UnknownSourceError struct {
	Source string
	Valid  []string
}

func (e *UnknownSourceError) Error() string {
	options := append(append([]string{}, e.Valid...), registry.AllFeeds)
	return fmt.Sprintf("Unknown source '%s'. Valid options: %s", e.Source, strings.Join(options, ", "))
}

// InvalidInputError reports parameters rejected before any request is made.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "Invalid input: " + e.Reason
}

func invalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}
