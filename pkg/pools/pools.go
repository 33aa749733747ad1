// Package pools provides a generic object pool that amortizes the cost of
// building objects which are created and discarded often.
//
// A Pool holds a reservoir of ready items. Acquire hands one out, growing
// the reservoir by a fixed batch when it is empty; Release puts it back for
// reuse. Reduce destroys the idle items and Teardown destroys everything the
// reservoir still references:
//
//	p, err := pools.New(newFrame, closeFrame, 100, 50, pools.WithName("frames"))
//	if err != nil {
//		return err
//	}
//	defer p.Teardown()
//
//	f := p.Acquire()
//	defer p.Release(f)
//
// A Pool is not safe for concurrent use. parallel.WorkerPool gives every
// worker goroutine its own Pool.
package pools
