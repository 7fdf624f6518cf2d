package provider

// ChangeNotifier is told about every successful mutation. Implementations must
// return promptly: delivery to subscribers happens elsewhere and is best-effort.
type ChangeNotifier interface {
	NotifyChange(id ResourceID)
}

// NotifierFunc adapts a function to ChangeNotifier.
type NotifierFunc func(id ResourceID)

func (f NotifierFunc) NotifyChange(id ResourceID) {
	f(id)
}

type nopNotifier struct{}

func (nopNotifier) NotifyChange(ResourceID) {}
