package modkit

// Module is the common surface of every module
type Module interface {
	// Name returns the module name
	Name() string
	// Ports returns the module specific port set
	Ports() any
}
