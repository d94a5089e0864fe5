package domain

// State is derived from Profile.is_unclaimed. A claim in flight (reset
// email sent, password not yet set) still reads as unclaimed.
type State string

const (
	StateUnclaimed State = "unclaimed"
	StateClaimed   State = "claimed"
)

// Result is returned to the claim form.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
