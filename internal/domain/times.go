package domain

// NormalizeTimes orders an observed (created, modified) pair so that
// created never exceeds modified, collapsing to a single known value when
// only one side is present.
func NormalizeTimes(created, modified *int64) (*int64, *int64) {
	switch {
	case created != nil && modified != nil:
		c, m := *created, *modified
		if c > m {
			c, m = m, c
		}
		return &c, &m
	case created != nil:
		v := *created
		return &v, &v
	case modified != nil:
		v := *modified
		return &v, &v
	default:
		return nil, nil
	}
}

// ResolveTimes applies the timestamp-resolution rule used by every import
// path: a metadata-declared creation time always wins for created_at, and
// modified_at widens to the max of itself, the file-observed times, and the
// declared creation time. Without a declared creation time it degenerates
// to NormalizeTimes on the file-observed pair.
func ResolveTimes(primaryCreated, fileCreated, fileModified *int64) (*int64, *int64) {
	if primaryCreated != nil {
		p := *primaryCreated
		modified := p
		if fileModified != nil && *fileModified > modified {
			modified = *fileModified
		}
		if fileCreated != nil && *fileCreated > modified {
			modified = *fileCreated
		}
		return &p, &modified
	}
	return NormalizeTimes(fileCreated, fileModified)
}
