package domain

// Reaction is one user's engagement state toward one review. Like and dislike
// are mutually exclusive: the state for a (review, user) pair is always exactly
// one of none, like or dislike.
type Reaction string

const (
	ReactionNone    Reaction = ""
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// Valid reports whether r is one of the two persisted reaction kinds.
func (r Reaction) Valid() bool {
	return r == ReactionLike || r == ReactionDislike
}

// Toggle returns the state that follows current when the user toggles action.
// Toggling the current reaction clears it; toggling the other reaction replaces
// it in a single step, so a dislike flips straight to a like with no
// intermediate none state.
func (r Reaction) Toggle(action Reaction) Reaction {
	if r == action {
		return ReactionNone
	}
	return action
}

// Ptr returns a pointer suitable for the nullable userAction response field,
// nil when the reaction is none.
func (r Reaction) Ptr() *Reaction {
	if r == ReactionNone {
		return nil
	}
	v := r
	return &v
}
