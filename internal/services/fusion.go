package services

// Fuse merges the content-based and collaborative candidate lists with the
// rank-membership rule: ids present in both lists first (in content-list
// order), then content-only ids, then collaborative-only ids, truncated to
// k. No scores are blended; only membership and list order matter. When
// one list is empty the other is returned truncated.
func Fuse(content, collaborative []int64, k int) []int64 {
	if k <= 0 {
		return nil
	}

	truncate := func(ids []int64) []int64 {
		if len(ids) > k {
			return ids[:k]
		}
		return ids
	}
	if len(content) == 0 {
		return truncate(collaborative)
	}
	if len(collaborative) == 0 {
		return truncate(content)
	}

	inContent := make(map[int64]struct{}, len(content))
	for _, id := range content {
		inContent[id] = struct{}{}
	}
	inCollaborative := make(map[int64]struct{}, len(collaborative))
	for _, id := range collaborative {
		inCollaborative[id] = struct{}{}
	}

	var common, contentOnly, collaborativeOnly []int64
	for _, id := range content {
		if _, ok := inCollaborative[id]; ok {
			common = append(common, id)
		} else {
			contentOnly = append(contentOnly, id)
		}
	}
	for _, id := range collaborative {
		if _, ok := inContent[id]; !ok {
			collaborativeOnly = append(collaborativeOnly, id)
		}
	}

	fused := make([]int64, 0, len(common)+len(contentOnly)+len(collaborativeOnly))
	fused = append(fused, common...)
	fused = append(fused, contentOnly...)
	fused = append(fused, collaborativeOnly...)
	return truncate(fused)
}
