package player

type subscription[T any] struct {
	id int
	fn func(T)
}

// subscriberList is an ordered set of callbacks. Callers synchronize access.
type subscriberList[T any] struct {
	nextID int
	subs   []subscription[T]
}

func (l *subscriberList[T]) add(fn func(T)) int {
	l.nextID++
	l.subs = append(l.subs, subscription[T]{id: l.nextID, fn: fn})
	return l.nextID
}

func (l *subscriberList[T]) remove(id int) {
	for i, sub := range l.subs {
		if sub.id == id {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return
		}
	}
}

// snapshot copies the current callbacks so delivery is unaffected by later
// subscribe or unsubscribe calls.
func (l *subscriberList[T]) snapshot() []func(T) {
	out := make([]func(T), len(l.subs))
	for i, sub := range l.subs {
		out[i] = sub.fn
	}
	return out
}
