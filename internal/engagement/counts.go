package engagement

// RecomputeCounts derives likesCount and commentsCount from the aggregate.
// commentsCount counts every comment plus every reply.
func RecomputeCounts(a *Aggregate) (likesCount, commentsCount int) {
	likesCount = len(a.Likes)
	for _, c := range a.Comments {
		commentsCount += 1 + len(c.Replies)
	}
	return likesCount, commentsCount
}

// RecomputeCounts refreshes the stored counters in place.
func (a *Aggregate) RecomputeCounts() {
	a.LikesCount, a.CommentsCount = RecomputeCounts(a)
}
