package nav

// ScreenKind identifies a screen type.
type ScreenKind string

const (
	ScreenThreadList ScreenKind = "thread-list"
	ScreenThread     ScreenKind = "thread"
)

// Screen is the payload stored for one pushed screen.
type Screen struct {
	Kind ScreenKind
	// ThreadRoot is set for ScreenThread.
	ThreadRoot string
	// RoomGUID scopes the screen to a room.
	RoomGUID string
}

// ScreenID indexes a screen in the stack's arena.
type ScreenID int

// NoScreen is the id of the empty stack position.
const NoScreen ScreenID = -1

type screenEntry struct {
	screen Screen
	parent ScreenID
}

// Stack tracks the screen hierarchy in an append-only arena. Screens refer
// to their parents by index, so no screen holds another and stale handles
// stay valid lookups.
type Stack struct {
	arena   []screenEntry
	current ScreenID
}

// NewStack returns an empty screen stack.
func NewStack() *Stack {
	return &Stack{current: NoScreen}
}

// Push appends a screen whose parent is the current screen and makes it
// current.
func (s *Stack) Push(screen Screen) ScreenID {
	id := ScreenID(len(s.arena))
	s.arena = append(s.arena, screenEntry{screen: screen, parent: s.current})
	s.current = id
	return id
}

// Pop returns to the current screen's parent and reports the new current
// id. Popping an empty stack stays empty.
func (s *Stack) Pop() ScreenID {
	if s.current == NoScreen {
		return NoScreen
	}
	s.current = s.arena[s.current].parent
	return s.current
}

// Current returns the current screen id, NoScreen when empty.
func (s *Stack) Current() ScreenID {
	return s.current
}

// Get returns the screen stored for id. Arena entries outlive pops, so
// ids held elsewhere never dangle.
func (s *Stack) Get(id ScreenID) (Screen, bool) {
	if id < 0 || int(id) >= len(s.arena) {
		return Screen{}, false
	}
	return s.arena[id].screen, true
}

// ParentOf returns the parent id of id, NoScreen at the root or for
// unknown ids.
func (s *Stack) ParentOf(id ScreenID) ScreenID {
	if id < 0 || int(id) >= len(s.arena) {
		return NoScreen
	}
	return s.arena[id].parent
}

// Depth counts the screens from the current one to the root.
func (s *Stack) Depth() int {
	depth := 0
	for id := s.current; id != NoScreen; id = s.arena[id].parent {
		depth++
	}
	return depth
}
