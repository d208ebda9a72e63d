package rename

import (
	"strings"

	"mediatasks/internal/entry"
)

// SparseDir is the directory sparse files are moved into, relative to the
// target directory.
const SparseDir = ".sparse_files/"

var subtitleExts = map[string]struct{}{
	".srt": {},
	".sub": {},
}

// Selection holds the batch indexes of the main and subtitle files; -1 means
// none was found.
type Selection struct {
	Main int
	Sub  int
}

// HasMain reports whether a main file was selected.
func (s Selection) HasMain() bool { return s.Main >= 0 }

// HasSub reports whether a subtitle file was selected.
func (s Selection) HasSub() bool { return s.Sub >= 0 }

// Select scans files in order. The main file is the first whose size exceeds
// totalBytes*ratio; the subtitle is the first .srt or .sub file, considered
// only when keepSubs is set. The two choices are independent.
func Select(files []entry.ContentFile, totalBytes, ratio float64, keepSubs bool) Selection {
	sel := Selection{Main: -1, Sub: -1}
	threshold := totalBytes * ratio
	for i, f := range files {
		if sel.Main < 0 && float64(f.Size) > threshold {
			sel.Main = i
		}
		if keepSubs && sel.Sub < 0 {
			if _, ok := subtitleExts[splitExt(f.Name())]; ok {
				sel.Sub = i
			}
		}
	}
	return sel
}

// Layout carries the rendered and sanitized naming inputs for Plan.
type Layout struct {
	// Filename is the rendered content_filename, possibly empty.
	Filename string
	// Directory is the rendered container_directory, possibly empty.
	Directory string
	// FilenameConfigured reports whether content_filename is set in the
	// plugin configuration. Only then may its directory part shape the
	// target directory.
	FilenameConfigured bool
	KeepSubs           bool
	HideSparse         bool
}

// Update changes one file of the batch.
type Update struct {
	Index    int
	NewPath  string
	Download *bool
}

// Plan is the outcome of the heuristic for one batch.
type Plan struct {
	Selection Selection
	// Target is the directory prefix new paths are built from, ending in "/".
	Target  string
	Updates []Update
}

// TargetDir computes the directory prefix for a batch. Single-file batches
// always land at "/".
func TargetDir(files []entry.ContentFile, main int, layout Layout) string {
	if len(files) <= 1 {
		return "/"
	}
	target := ""
	if layout.Directory != "" {
		target = layout.Directory + "/"
	}
	if dir := dirname(layout.Filename); layout.FilenameConfigured && dir != "" {
		return target + dir + "/"
	}
	return target + dirname(files[main].Name()) + "/"
}

// Build computes the updates for a batch whose main file has been selected.
func Build(files []entry.ContentFile, sel Selection, layout Layout) Plan {
	plan := Plan{Selection: sel}
	if !sel.HasMain() {
		return plan
	}
	plan.Target = TargetDir(files, sel.Main, layout)
	mainName := files[sel.Main].Name()

	if layout.Filename != "" {
		newMain := plan.Target + basename(layout.Filename) + splitExt(mainName)
		plan.Updates = append(plan.Updates, Update{Index: sel.Main, NewPath: newMain, Download: boolPtr(true)})
		if sel.HasSub() && layout.KeepSubs {
			newSub := stripExt(newMain) + splitExt(files[sel.Sub].Name())
			plan.Updates = append(plan.Updates, Update{Index: sel.Sub, NewPath: newSub, Download: boolPtr(true)})
		}
	}

	if len(files) > 1 {
		for i, f := range files {
			keptSub := i == sel.Sub && layout.KeepSubs
			switch {
			case layout.HideSparse && i != sel.Main && !keptSub:
				plan.Updates = append(plan.Updates, Update{Index: i, NewPath: plan.Target + SparseDir + basename(f.Name())})
			case layout.Directory != "":
				// Relocating the remaining files into the container directory
				// never takes effect; the computed path is dropped.
				_ = plan.Target + basename(f.Name())
			}
		}
	}
	return plan
}

// Apply returns a copy of files with the updates applied by index.
func Apply(files []entry.ContentFile, updates []Update) []entry.ContentFile {
	out := make([]entry.ContentFile, len(files))
	copy(out, files)
	for _, u := range updates {
		if u.Index < 0 || u.Index >= len(out) {
			continue
		}
		out[u.Index].NewPath = u.NewPath
		if u.Download != nil {
			v := *u.Download
			out[u.Index].Download = &v
		}
	}
	return out
}

func boolPtr(v bool) *bool { return &v }

// basename returns the part of p after the final slash.
func basename(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}

// dirname returns the part of p before the final slash with trailing slashes
// removed, "" when p has no slash, and the slashes themselves for a root
// path.
func dirname(p string) string {
	head := p[:strings.LastIndex(p, "/")+1]
	if head != "" && strings.Trim(head, "/") != "" {
		head = strings.TrimRight(head, "/")
	}
	return head
}

// splitExt returns the extension of the last path component including the
// dot. Leading dots of the component do not start an extension.
func splitExt(p string) string {
	base := basename(p)
	trimmed := strings.TrimLeft(base, ".")
	idx := strings.LastIndex(trimmed, ".")
	if idx < 0 {
		return ""
	}
	return trimmed[idx:]
}

func stripExt(p string) string {
	return p[:len(p)-len(splitExt(p))]
}
