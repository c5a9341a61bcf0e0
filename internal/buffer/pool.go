package buffer

import (
	"errors"
	"sync"
)

// ErrTooLarge is returned by Pool.Get for sizes it won't hand out.
var ErrTooLarge = errors.New("requested buffer size is out of range")

// Pool recycles output windows by size. Safe for concurrent use.
type Pool struct {
	max   int
	pools sync.Map // int -> *sync.Pool
}

// NewPool creates a Pool that refuses requests over max bytes.
func NewPool(max int) *Pool {
	return &Pool{max: max}
}

func (p *Pool) sized(size int) *sync.Pool {
	if sp, ok := p.pools.Load(size); ok {
		return sp.(*sync.Pool)
	}
	sp, _ := p.pools.LoadOrStore(size, &sync.Pool{
		New: func() any {
			b := make([]byte, size)
			return &b
		},
	})
	return sp.(*sync.Pool)
}

// Get returns a buffer of exactly size bytes.
func (p *Pool) Get(size int) ([]byte, error) {
	if size <= 0 || size > p.max {
		return nil, ErrTooLarge
	}
	return *p.sized(size).Get().(*[]byte), nil
}

// Put hands a buffer from Get back to the pool.
func (p *Pool) Put(b []byte) {
	if len(b) == 0 || len(b) > p.max {
		return
	}
	p.sized(len(b)).Put(&b)
}
