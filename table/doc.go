// Package table implements the archetype column store and the
// generational entity directory that back warehouse's ECS storage.
//
// A Table holds a dense vector of EntryIDs plus one column per
// component bit in its mask; an EntryIndex maps each EntryID to its
// current (Table, row) and tracks a free-list of retired slots with
// their generation, so a stale EntryID/generation pair can always be
// told apart from a live one in O(1).
package table
