package sqlbind

import (
	"sync"
)

var binderPool = sync.Pool{New: func() interface{} { return newBinder() }}

func getBinder() *Binder {
	return binderPool.Get().(*Binder)
}

// putBinder clears b and returns it to the pool.
func putBinder(b *Binder) {
	b.reset()
	binderPool.Put(b)
}
