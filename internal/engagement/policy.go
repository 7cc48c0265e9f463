package engagement

import "golang.org/x/exp/slices"

// UsersPostCategory is the only post category whose owner manages it directly.
const UsersPostCategory = "usersPost"

// Policy holds the per-kind authorization and content rules. The three kinds
// share one engagement implementation and differ only in this table.
type Policy struct {
	Kind Kind

	// MaxCommentLength bounds comment and reply text, in runes.
	MaxCommentLength int

	// CommentModeratorRoles may delete anyone's comment or reply in addition
	// to the entity owner.
	CommentModeratorRoles []string

	// FlagRoles may flip allowComments/allowShares. Empty means the entity
	// owner only.
	FlagRoles []string

	// ManagerRoles may create, update and delete entities of this kind.
	ManagerRoles []string

	// OwnerManagedCategory, when set, lets the owner manage entities of that
	// category and lets anyone create them.
	OwnerManagedCategory string
}

var contentManagers = []string{RoleAdmin, RolePostHandler}

var policies = map[Kind]Policy{
	KindPost: {
		Kind:                 KindPost,
		MaxCommentLength:     100,
		ManagerRoles:         contentManagers,
		OwnerManagedCategory: UsersPostCategory,
	},
	KindGallery: {
		Kind:             KindGallery,
		MaxCommentLength: 100,
		ManagerRoles:     contentManagers,
	},
	KindEvent: {
		Kind:                  KindEvent,
		MaxCommentLength:      255,
		CommentModeratorRoles: []string{RoleAdmin},
		FlagRoles:             contentManagers,
		ManagerRoles:          contentManagers,
	},
}

// PolicyFor returns the rules for kind. Unknown kinds get a zero policy that
// denies every moderated action and rejects all comment text.
func PolicyFor(kind Kind) Policy {
	return policies[kind]
}

// CanDeleteComment reports whether p may delete a comment or reply owned by
// authorID on an entity owned by entityOwnerID.
func (p Policy) CanDeleteComment(pr Principal, authorID, entityOwnerID string) bool {
	if pr.ID == "" {
		return false
	}
	if pr.ID == authorID || pr.ID == entityOwnerID {
		return true
	}
	return slices.Contains(p.CommentModeratorRoles, pr.Role)
}

// CanToggleFlags reports whether pr may flip the allow-comments and
// allow-shares flags.
func (p Policy) CanToggleFlags(pr Principal, entityOwnerID string) bool {
	if pr.ID == "" {
		return false
	}
	if len(p.FlagRoles) == 0 {
		return pr.ID == entityOwnerID
	}
	return slices.Contains(p.FlagRoles, pr.Role)
}

// CanManage reports whether pr may update or delete an entity.
func (p Policy) CanManage(pr Principal, entityOwnerID, category string) bool {
	if pr.ID == "" {
		return false
	}
	if p.OwnerManagedCategory != "" && category == p.OwnerManagedCategory {
		return pr.ID == entityOwnerID
	}
	return slices.Contains(p.ManagerRoles, pr.Role)
}

// CanCreate reports whether pr may create an entity in category.
func (p Policy) CanCreate(pr Principal, category string) bool {
	if pr.ID == "" {
		return false
	}
	if p.OwnerManagedCategory != "" && category == p.OwnerManagedCategory {
		return true
	}
	return slices.Contains(p.ManagerRoles, pr.Role)
}
