package picker

import "sync"

const KeyEscape = "Escape"

// Group tracks every control of every modal context so that at most one
// dropdown is open at a time.
type Group struct {
	mu       sync.Mutex
	controls []*Control
}

func NewGroup() *Group {
	return &Group{}
}

func (g *Group) register(c *Control) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.controls = append(g.controls, c)
}

func (g *Group) toggle(target *Control) {
	g.mu.Lock()
	defer g.mu.Unlock()
	opening := !target.open
	for _, c := range g.controls {
		if c == target {
			continue
		}
		g.setOpenLocked(c, false)
	}
	g.setOpenLocked(target, opening)
}

func (g *Group) close(c *Control) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setOpenLocked(c, false)
}

func (g *Group) setOpenLocked(c *Control, open bool) {
	if c.open == open {
		return
	}
	c.open = open
	c.view.SetOpen(open)
}

// CloseAll closes every open dropdown and reports whether one was open.
func (g *Group) CloseAll() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	closed := false
	for _, c := range g.controls {
		if c.open {
			closed = true
		}
		g.setOpenLocked(c, false)
	}
	return closed
}

// HandleOutsideClick is called for a click that landed outside every control
// and its menu.
func (g *Group) HandleOutsideClick() {
	g.CloseAll()
}

// HandleKey closes all dropdowns on Escape. It reports whether the key was
// consumed, so a modal can treat a second Escape as its own close request.
func (g *Group) HandleKey(key string) bool {
	if key != KeyEscape {
		return false
	}
	return g.CloseAll()
}

// Open returns the control whose dropdown is open, or nil.
func (g *Group) Open() *Control {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.controls {
		if c.open {
			return c
		}
	}
	return nil
}
