package specification

// NotesNewestFirst orders notes by their last change, most recent first.
var NotesNewestFirst = OrderBy{Field: "updated_at", Desc: true}
