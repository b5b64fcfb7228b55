package platform

import "fmt"

// UnavailableError indicates a platform whose session could not be
// established at all. Offers from other platforms are unaffected.
type UnavailableError struct {
	Platform string
	Err      error
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Platform, e.Err)
}

func (e UnavailableError) Unwrap() error {
	return e.Err
}

// SearchError indicates a failed search on an otherwise reachable platform.
type SearchError struct {
	Platform string
	Item     string
	Err      error
}

func (e SearchError) Error() string {
	return fmt.Sprintf("search %q on %s: %v", e.Item, e.Platform, e.Err)
}

func (e SearchError) Unwrap() error {
	return e.Err
}

// ActionError indicates a failed cart interaction.
type ActionError struct {
	Platform string
	Op       string
	Err      error
}

func (e ActionError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Platform, e.Err)
}

func (e ActionError) Unwrap() error {
	return e.Err
}
