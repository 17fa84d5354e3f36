package localstore

// Liked-post ids, persisted under the liked-posts key. The feed itself is
// rendered elsewhere; this store only remembers which posts the current
// user has liked across restarts.

func (s *Store) LikedPosts() []string {
	var ids []string
	if ok, err := s.kv.Get(KeyLikedPosts, &ids); err != nil || !ok {
		return nil
	}
	return ids
}

func (s *Store) HasLiked(postID string) bool {
	for _, id := range s.LikedPosts() {
		if id == postID {
			return true
		}
	}
	return false
}

func (s *Store) LikePost(postID string) error {
	ids := s.LikedPosts()
	for _, id := range ids {
		if id == postID {
			return nil
		}
	}
	return s.kv.Set(KeyLikedPosts, append(ids, postID))
}

func (s *Store) UnlikePost(postID string) error {
	ids := s.LikedPosts()
	out := ids[:0]
	for _, id := range ids {
		if id != postID {
			out = append(out, id)
		}
	}
	return s.kv.Set(KeyLikedPosts, out)
}
