package tasks

// Action is a transition request. The set of implementations is closed.
type Action interface {
	actionName() string
}

// SetAll replaces the whole task collection. Only loading uses it.
type SetAll struct {
	Tasks []Task
}

// Add appends a new task built from a draft.
type Add struct {
	Draft Draft
}

// Update merges a patch into the task with the given ID.
type Update struct {
	ID    string
	Patch Patch
}

// Delete removes the task with the given ID.
type Delete struct {
	ID string
}

// Move rewrites a task's stage.
type Move struct {
	ID    string
	Stage string
}

// Reorder moves one task inside the ordered projection of a stage.
type Reorder struct {
	StageID string
	Start   int
	End     int
}

func (SetAll) actionName() string  { return "set_all" }
func (Add) actionName() string     { return "add" }
func (Update) actionName() string  { return "update" }
func (Delete) actionName() string  { return "delete" }
func (Move) actionName() string    { return "move" }
func (Reorder) actionName() string { return "reorder" }

// ActionName returns a stable name for logging.
func ActionName(a Action) string { return a.actionName() }
