package domain

// LocaleContainer is a directory-like node holding child containers and child
// files for one locale.
type LocaleContainer struct {
	nodeBase
	containers []*LocaleContainer
	files      []*LocaleFile
}

func NewLocaleContainer(name, locale string) *LocaleContainer {
	c := &LocaleContainer{}
	c.init(c, name, locale)
	return c
}

func (c *LocaleContainer) NodeKind() NodeKind { return KindContainer }

func (c *LocaleContainer) Containers() []*LocaleContainer {
	out := make([]*LocaleContainer, len(c.containers))
	copy(out, c.containers)
	return out
}

func (c *LocaleContainer) Files() []*LocaleFile {
	out := make([]*LocaleFile, len(c.files))
	copy(out, c.files)
	return out
}

// AddContainer attaches child under c. A previous parent link is replaced.
func (c *LocaleContainer) AddContainer(child *LocaleContainer) {
	if child == nil {
		return
	}
	child.setParent(c)
	c.containers = append(c.containers, child)
	c.Touch()
}

func (c *LocaleContainer) AddFile(f *LocaleFile) {
	if f == nil {
		return
	}
	f.setParent(c)
	c.files = append(c.files, f)
	c.Touch()
}

// RemoveContainer detaches child from c. It does not remove child's own
// subtree or twins.
func (c *LocaleContainer) RemoveContainer(child *LocaleContainer) bool {
	for i, cc := range c.containers {
		if cc == child {
			c.containers = append(c.containers[:i], c.containers[i+1:]...)
			child.setParent(nil)
			c.Touch()
			return true
		}
	}
	return false
}

func (c *LocaleContainer) RemoveFile(f *LocaleFile) bool {
	for i, ff := range c.files {
		if ff == f {
			c.files = append(c.files[:i], c.files[i+1:]...)
			f.setParent(nil)
			c.Touch()
			return true
		}
	}
	return false
}

// ContainerByName returns the first child container with the given name.
// Duplicate sibling names are tolerated; first match wins.
func (c *LocaleContainer) ContainerByName(name string) *LocaleContainer {
	for _, cc := range c.containers {
		if cc.Name() == name {
			return cc
		}
	}
	return nil
}

func (c *LocaleContainer) FileByName(name string) *LocaleFile {
	for _, f := range c.files {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// ParentContainer returns the owning container, or nil at a LocalePath root.
func (c *LocaleContainer) ParentContainer() *LocaleContainer {
	if p, ok := c.Parent().(*LocaleContainer); ok {
		return p
	}
	return nil
}
