package engagement

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

func (a *Aggregate) policy() Policy {
	return PolicyFor(a.Kind)
}

func (a *Aggregate) checkText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(text) > a.policy().MaxCommentLength {
		return "", fmt.Errorf("%w: max %d characters", ErrContentTooLong, a.policy().MaxCommentLength)
	}
	return text, nil
}

func (a *Aggregate) findComment(commentID string) (int, *Comment) {
	for i := range a.Comments {
		if a.Comments[i].ID == commentID {
			return i, &a.Comments[i]
		}
	}
	return -1, nil
}

func (c *Comment) findReply(replyID string) (int, *Reply) {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			return i, &c.Replies[i]
		}
	}
	return -1, nil
}

// AddComment appends a comment by ownerID.
func (a *Aggregate) AddComment(ownerID, content string) (*Comment, error) {
	if !a.AllowComments {
		return nil, ErrCommentsDisabled
	}
	text, err := a.checkText(content)
	if err != nil {
		return nil, err
	}

	ts := now()
	a.Comments = append(a.Comments, Comment{
		ID:        newID(),
		OwnerID:   ownerID,
		Content:   text,
		Likes:     []string{},
		Replies:   []Reply{},
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	a.RecomputeCounts()
	return &a.Comments[len(a.Comments)-1], nil
}

// EditComment replaces the text of a comment. Only its owner may edit it.
func (a *Aggregate) EditComment(commentID, ownerID, content string) error {
	_, c := a.findComment(commentID)
	if c == nil {
		return ErrCommentNotFound
	}
	if c.OwnerID != ownerID {
		return ErrNotOwner
	}
	text, err := a.checkText(content)
	if err != nil {
		return err
	}
	c.Content = text
	c.UpdatedAt = now()
	a.RecomputeCounts()
	return nil
}

// DeleteComment removes a comment together with its replies.
func (a *Aggregate) DeleteComment(commentID string, pr Principal) error {
	i, c := a.findComment(commentID)
	if c == nil {
		return ErrCommentNotFound
	}
	if !a.policy().CanDeleteComment(pr, c.OwnerID, a.OwnerID) {
		return ErrNotAllowed
	}
	a.Comments = append(a.Comments[:i], a.Comments[i+1:]...)
	a.RecomputeCounts()
	return nil
}

// ToggleLike flips userID's like on the entity and returns the new state.
func (a *Aggregate) ToggleLike(userID string) bool {
	var liked bool
	a.Likes, liked = toggleMember(a.Likes, userID)
	a.RecomputeCounts()
	return liked
}

// ToggleCommentLike flips userID's like on a comment.
func (a *Aggregate) ToggleCommentLike(commentID, userID string) (bool, error) {
	_, c := a.findComment(commentID)
	if c == nil {
		return false, ErrCommentNotFound
	}
	var liked bool
	c.Likes, liked = toggleMember(c.Likes, userID)
	a.RecomputeCounts()
	return liked, nil
}

// AddReply appends a reply under commentID.
func (a *Aggregate) AddReply(commentID, ownerID, text string) (*Reply, error) {
	if !a.AllowComments {
		return nil, ErrCommentsDisabled
	}
	_, c := a.findComment(commentID)
	if c == nil {
		return nil, ErrCommentNotFound
	}
	body, err := a.checkText(text)
	if err != nil {
		return nil, err
	}

	ts := now()
	c.Replies = append(c.Replies, Reply{
		ID:        newID(),
		OwnerID:   ownerID,
		Reply:     body,
		Likes:     []string{},
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	a.RecomputeCounts()
	return &c.Replies[len(c.Replies)-1], nil
}

func (a *Aggregate) resolveReply(commentID, replyID string) (*Comment, int, *Reply, error) {
	_, c := a.findComment(commentID)
	if c == nil {
		return nil, -1, nil, ErrCommentNotFound
	}
	i, r := c.findReply(replyID)
	if r == nil {
		return nil, -1, nil, ErrReplyNotFound
	}
	return c, i, r, nil
}

// EditReply replaces the text of a reply. Only its owner may edit it.
func (a *Aggregate) EditReply(commentID, replyID, ownerID, text string) error {
	_, _, r, err := a.resolveReply(commentID, replyID)
	if err != nil {
		return err
	}
	if r.OwnerID != ownerID {
		return ErrNotOwner
	}
	body, err := a.checkText(text)
	if err != nil {
		return err
	}
	r.Reply = body
	r.UpdatedAt = now()
	a.RecomputeCounts()
	return nil
}

// DeleteReply removes a reply from its parent comment.
func (a *Aggregate) DeleteReply(commentID, replyID string, pr Principal) error {
	c, i, r, err := a.resolveReply(commentID, replyID)
	if err != nil {
		return err
	}
	if !a.policy().CanDeleteComment(pr, r.OwnerID, a.OwnerID) {
		return ErrNotAllowed
	}
	c.Replies = append(c.Replies[:i], c.Replies[i+1:]...)
	a.RecomputeCounts()
	return nil
}

// ToggleReplyLike flips userID's like on a reply.
func (a *Aggregate) ToggleReplyLike(commentID, replyID, userID string) (bool, error) {
	_, _, r, err := a.resolveReply(commentID, replyID)
	if err != nil {
		return false, err
	}
	var liked bool
	r.Likes, liked = toggleMember(r.Likes, userID)
	a.RecomputeCounts()
	return liked, nil
}

// Share counts one more share. The same user may share repeatedly.
func (a *Aggregate) Share() error {
	if !a.AllowShares {
		return ErrSharesDisabled
	}
	a.Shares++
	return nil
}
