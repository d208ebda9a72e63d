// Package render expands entry templates such as the rename plugin's
// content_filename.
//
// Templates use text/template syntax against a flat map of the entry's
// fields, e.g. {{.series_name}}. The entry title is also parsed as a release
// name, adding series, season, episode, year, resolution, source, and codec
// keys when the title carries them. Referencing an unknown key is a render
// error rather than an empty string.
package render
