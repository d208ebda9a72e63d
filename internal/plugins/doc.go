// Package plugins registers the built-in plugins:
//
//   - thetvdb_list emits a TheTVDB user's favorites and provides them as a
//     list for list_add/list_remove. thetvdb_favorites is its deprecated alias.
//   - thetvdb_add and thetvdb_remove (deprecated) edit the favorites from
//     accepted entries at the end of the output phase.
//   - list_add and list_remove add or remove accepted entries on any list
//     plugin.
//   - deluge_rename plans content file renames for accepted torrents.
package plugins
