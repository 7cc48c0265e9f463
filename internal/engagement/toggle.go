package engagement

import "golang.org/x/exp/slices"

// Toggles only flip. There is no way to set an explicit value, so calling a
// toggle twice restores the original state and clients must know the current
// state to predict the result.

// Toggle returns the flipped value.
func Toggle(v bool) bool { return !v }

// toggleMember removes id from set when present, otherwise appends it. The
// returned bool is true when id is a member afterwards.
func toggleMember(set []string, id string) ([]string, bool) {
	if i := slices.Index(set, id); i >= 0 {
		return slices.Delete(set, i, i+1), false
	}
	return append(set, id), true
}

// ToggleAllowComments flips allowComments and returns the new value.
func (a *Aggregate) ToggleAllowComments(pr Principal) (bool, error) {
	if !a.policy().CanToggleFlags(pr, a.OwnerID) {
		return a.AllowComments, ErrNotAllowed
	}
	a.AllowComments = Toggle(a.AllowComments)
	return a.AllowComments, nil
}

// ToggleAllowShares flips allowShares and returns the new value.
func (a *Aggregate) ToggleAllowShares(pr Principal) (bool, error) {
	if !a.policy().CanToggleFlags(pr, a.OwnerID) {
		return a.AllowShares, ErrNotAllowed
	}
	a.AllowShares = Toggle(a.AllowShares)
	return a.AllowShares, nil
}

// LikeMessage names the state a like toggle ended in, e.g. "Post Liked Successfully".
func LikeMessage(target string, liked bool) string {
	if liked {
		return target + " Liked Successfully"
	}
	return target + " Disliked Successfully"
}

// AllowCommentsMessage describes the allowComments state after a toggle.
func AllowCommentsMessage(on bool) string {
	if on {
		return "Comments Are On Now"
	}
	return "Comments Are Off Now"
}

// AllowSharesMessage describes the allowShares state after a toggle.
func AllowSharesMessage(on bool) string {
	if on {
		return "Sharing Are On Now"
	}
	return "Sharing Are Off Now"
}

// Label is the human name of a kind used in response messages.
func (k Kind) Label() string {
	switch k {
	case KindPost:
		return "Post"
	case KindGallery:
		return "Gallery Post"
	case KindEvent:
		return "Event"
	}
	return "Content"
}
