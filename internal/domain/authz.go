package domain

// CanMutate reports whether the given actor may modify or delete a resource
// owned by ownerID. Books use the book's AddedBy as owner; reviews use the
// review's UserID. Both mutation paths go through this single predicate.
func CanMutate(actorID, ownerID string) bool {
	return actorID != "" && actorID == ownerID
}
