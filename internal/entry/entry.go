package entry

import (
	"fmt"
	"strings"
)

// State is the decision recorded for an entry.
type State int

const (
	Undecided State = iota
	Accepted
	Rejected
	Failed
)

var stateNames = map[State]string{
	Undecided: "undecided",
	Accepted:  "accepted",
	Rejected:  "rejected",
	Failed:    "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	value := strings.ToLower(strings.TrimSpace(string(text)))
	if value == "" {
		*s = Undecided
		return nil
	}
	for state, name := range stateNames {
		if name == value {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown entry state %q", value)
}

// ContentFile is one file inside a torrent. Download is tri-state: nil means
// the client's default applies.
type ContentFile struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	NewPath  string `json:"new_path,omitempty"`
	Download *bool  `json:"download,omitempty"`
}

// Name returns the file's current name: NewPath when set, else Path.
func (f ContentFile) Name() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.Path
}

// Entry is a single task item.
type Entry struct {
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	SeriesName string `json:"series_name,omitempty"`
	TVDBID     string `json:"tvdb_id,omitempty"`

	ContentFiles []ContentFile `json:"content_files,omitempty"`
	// ContentSize is the total torrent size in MiB.
	ContentSize float64 `json:"content_size,omitempty"`
	// ContentFilename and ContainerDirectory override the rename plugin's
	// configured templates for this entry when set.
	ContentFilename    string `json:"content_filename,omitempty"`
	ContainerDirectory string `json:"container_directory,omitempty"`

	Fields map[string]any `json:"fields,omitempty"`

	State  State  `json:"state,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// New returns an undecided entry with the given title.
func New(title string) *Entry {
	return &Entry{Title: title}
}

// Accept marks the entry accepted. Failed entries stay failed.
func (e *Entry) Accept(reason string) {
	if e.State == Failed {
		return
	}
	e.State = Accepted
	e.Reason = reason
}

// Reject marks the entry rejected. Failed entries stay failed.
func (e *Entry) Reject(reason string) {
	if e.State == Failed {
		return
	}
	e.State = Rejected
	e.Reason = reason
}

// Fail marks the entry failed with reason.
func (e *Entry) Fail(reason string) {
	e.State = Failed
	e.Reason = reason
}

func (e *Entry) Accepted() bool { return e.State == Accepted }

func (e *Entry) Failed() bool { return e.State == Failed }

// Set stores an extra field. Known field names update the typed fields.
func (e *Entry) Set(key string, value any) {
	switch key {
	case "title":
		e.Title = fmt.Sprint(value)
	case "url":
		e.URL = fmt.Sprint(value)
	case "series_name":
		e.SeriesName = fmt.Sprint(value)
	case "tvdb_id":
		e.TVDBID = fmt.Sprint(value)
	default:
		if e.Fields == nil {
			e.Fields = make(map[string]any)
		}
		e.Fields[key] = value
	}
}

// Get returns a field by name, covering both typed and extra fields.
func (e *Entry) Get(key string) (any, bool) {
	switch key {
	case "title":
		return e.Title, e.Title != ""
	case "url":
		return e.URL, e.URL != ""
	case "series_name":
		return e.SeriesName, e.SeriesName != ""
	case "tvdb_id":
		return e.TVDBID, e.TVDBID != ""
	case "content_size":
		return e.ContentSize, e.ContentSize != 0
	}
	value, ok := e.Fields[key]
	return value, ok
}

// Map flattens the entry into a field map suitable for templates.
func (e *Entry) Map() map[string]any {
	out := make(map[string]any, len(e.Fields)+6)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["title"] = e.Title
	out["url"] = e.URL
	out["series_name"] = e.SeriesName
	out["tvdb_id"] = e.TVDBID
	out["content_size"] = e.ContentSize
	out["content_files"] = e.ContentFiles
	return out
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	clone := *e
	if e.ContentFiles != nil {
		clone.ContentFiles = make([]ContentFile, len(e.ContentFiles))
		for i, f := range e.ContentFiles {
			if f.Download != nil {
				v := *f.Download
				f.Download = &v
			}
			clone.ContentFiles[i] = f
		}
	}
	if e.Fields != nil {
		clone.Fields = make(map[string]any, len(e.Fields))
		for k, v := range e.Fields {
			clone.Fields[k] = v
		}
	}
	return &clone
}

// Filter returns the entries in the given state, preserving order.
func Filter(entries []*Entry, state State) []*Entry {
	var out []*Entry
	for _, e := range entries {
		if e.State == state {
			out = append(out, e)
		}
	}
	return out
}

// Live returns entries that have not failed, preserving order.
func Live(entries []*Entry) []*Entry {
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Failed() {
			out = append(out, e)
		}
	}
	return out
}
