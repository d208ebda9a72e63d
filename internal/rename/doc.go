// Package rename decides how the files of a multi-file torrent should be laid
// out before download.
//
// The heuristic looks for one dominant file, the first whose size exceeds
// main_file_ratio of the total. When found it may be renamed after a rendered
// template, a matching .srt/.sub file follows it, and with main_file_only and
// hide_sparse_files every other file is moved under a ".sparse_files/"
// directory so the client does not clutter the download folder with
// placeholders. Selections are recorded by index and applied as a list of
// updates; files are never removed from the batch.
package rename
