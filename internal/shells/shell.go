package shells

// Shell is a projectile plus the shells it releases when its lifetime ends.
// Shells are built once by a Recipe and treated as immutable templates.
type Shell struct {
	Projectile Projectile
	Children   []Shell
}

// Size returns the number of shells in the tree rooted at s, s included.
func (s Shell) Size() int {
	n := 1
	for _, c := range s.Children {
		n += c.Size()
	}
	return n
}

// Depth returns the number of levels in the tree (a leaf has depth 1).
func (s Shell) Depth() int {
	d := 0
	for _, c := range s.Children {
		if cd := c.Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}

// Leaves returns the number of shells that explode without children.
func (s Shell) Leaves() int {
	if len(s.Children) == 0 {
		return 1
	}
	n := 0
	for _, c := range s.Children {
		n += c.Leaves()
	}
	return n
}
