// Package host defines the identity of a plugin host process.
package host

// Identity names a plugin host together with the source tree and launch
// arguments used to build and start it. An Identity is immutable once a
// start request begins.
type Identity struct {
	Name string
	Dir  string
	Args []string
}

// New creates an Identity with a defensive copy of args.
func New(name, dir string, args []string) Identity {
	return Identity{
		Name: name,
		Dir:  dir,
		Args: append([]string(nil), args...),
	}
}
