package bthread

// A State is a [Signal] that carries a value.
// To retrieve the value, call the Get method.
//
// Calling the Set method of a state updates the value and wakes any task
// waiting on the state.
//
// A State must not be shared by more than one [Scheduler].
type State[T any] struct {
	Signal
	value T
}

// NewState creates a new [State] with its initial value set to v.
func NewState[T any](v T) *State[T] {
	return &State[T]{value: v}
}

// Get retrieves the value of st.
func (st *State[T]) Get() T {
	return st.value
}

// Set updates the value of st and wakes any task waiting on st.
func (st *State[T]) Set(v T) {
	st.value = v
	st.Notify()
}

// Update sets the value of st to f(st.Get()) and wakes any task waiting
// on st.
func (st *State[T]) Update(f func(v T) T) {
	st.Set(f(st.value))
}
