package packwiz

import "sort"

// Merge layers child over parent. Entries are keyed by path and a child
// entry replaces the parent entry at the same path wholesale. When the
// two defaults differ, parent entries without their own format get the
// parent default stamped on. The result uses the child default and is
// sorted by path.
func Merge(parent, child Index) Index {
	files := make(map[string]File, len(parent.Files)+len(child.Files))

	for _, f := range parent.Files {
		if f.HashFormat == nil && parent.HashFormat != child.HashFormat {
			def := parent.HashFormat
			f.HashFormat = &def
		}
		files[f.File] = f
	}
	for _, f := range child.Files {
		files[f.File] = f
	}

	merged := Index{
		HashFormat: child.HashFormat,
		Files:      make([]File, 0, len(files)),
	}
	for _, f := range files {
		merged.Files = append(merged.Files, f)
	}
	sort.Slice(merged.Files, func(i, j int) bool {
		return merged.Files[i].File < merged.Files[j].File
	})
	return merged
}
