package layerrenamer

// UndoLog holds the actions of the most recent rename run. Recording a new
// run discards whatever was held before.
type UndoLog struct {
	actions []RenameAction
}

func NewUndoLog() *UndoLog {
	return &UndoLog{}
}

// Record replaces the held batch with actions.
func (u *UndoLog) Record(actions []RenameAction) {
	u.actions = append([]RenameAction(nil), actions...)
}

// Undo restores the old name of every node in the held batch and empties the
// log. Actions are replayed newest first, so a node recorded twice ends up
// with its earliest name. It returns the number of restored actions; an empty
// log restores nothing.
func (u *UndoLog) Undo() int {
	if len(u.actions) == 0 {
		return 0
	}

	for i := len(u.actions) - 1; i >= 0; i-- {
		u.actions[i].Node.Name = u.actions[i].OldName
	}

	restored := len(u.actions)
	u.actions = nil
	return restored
}

func (u *UndoLog) Len() int {
	return len(u.actions)
}

// Pending returns a copy of the held batch.
func (u *UndoLog) Pending() []RenameAction {
	return append([]RenameAction(nil), u.actions...)
}
