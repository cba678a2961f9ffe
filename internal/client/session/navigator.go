package session

// Navigator performs the hard reset that follows sign-out.
type Navigator interface {
	// Reset discards any view state and starts over at path.
	Reset(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Reset(path string) { f(path) }

type nopNavigator struct{}

func (nopNavigator) Reset(string) {}
