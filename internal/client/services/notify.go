package services

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// Navigator moves the user to a client route.
type Navigator interface {
	Navigate(route string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Info(string)    {}
func (nopNotifier) Error(string)   {}

// NopNotifier discards every message.
func NopNotifier() Notifier { return nopNotifier{} }
