package parallelism

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrTerminated is returned when work is submitted to a terminated array.
var ErrTerminated = errors.New("worker array terminated")

// Work is a data-parallel workload. It's invoked once per partition with the
// partition index and the partition count, and it should handle every
// count'th item of its input starting at index.
type Work func(index, count int) error

// job is a single partition of a workload.
type job struct {
	// work is the workload.
	work Work
	// index is the partition index.
	index int
	// result receives the partition's error (which may be nil).
	result chan<- partitionResult
}

// partitionResult is the outcome of a job.
type partitionResult struct {
	// index is the partition index.
	index int
	// err is the partition error.
	err error
}

// WorkerArray is a fixed pool of long-lived Goroutines that split workloads
// into one partition per worker. Workloads submitted from different Goroutines
// may run concurrently.
type WorkerArray struct {
	// size is the number of workers and partitions.
	size int
	// jobs feeds partitions to the workers. It's closed on termination.
	jobs chan job
	// state guards terminated. Do holds it for reading while submitting.
	state sync.RWMutex
	// terminated indicates whether or not jobs has been closed.
	terminated bool
	// exited tracks running workers.
	exited sync.WaitGroup
}

// NewWorkerArray starts a worker array. A size below one selects the number of
// CPUs.
func NewWorkerArray(size int) *WorkerArray {
	if size < 1 {
		size = runtime.NumCPU()
	}
	array := &WorkerArray{
		size: size,
		jobs: make(chan job),
	}
	array.exited.Add(size)
	for i := 0; i < size; i++ {
		go array.run()
	}
	return array
}

// Size returns the number of workers in the array.
func (a *WorkerArray) Size() int {
	return a.size
}

// run executes jobs until the job channel is closed.
func (a *WorkerArray) run() {
	defer a.exited.Done()
	for j := range a.jobs {
		j.result <- partitionResult{j.index, j.work(j.index, a.size)}
	}
}

// Do splits work into Size partitions, runs them on the workers, and blocks
// until all of them return. If any partitions fail, the error from the lowest
// partition index is returned.
func (a *WorkerArray) Do(work Work) error {
	// Submit the partitions. The result channel is buffered so that workers
	// never block on delivery.
	results := make(chan partitionResult, a.size)
	a.state.RLock()
	if a.terminated {
		a.state.RUnlock()
		return ErrTerminated
	}
	for i := 0; i < a.size; i++ {
		a.jobs <- job{work: work, index: i, result: results}
	}
	a.state.RUnlock()

	// Gather results.
	errs := make([]error, a.size)
	for i := 0; i < a.size; i++ {
		r := <-results
		errs[r.index] = r.err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Terminate stops the workers once in-progress workloads have been submitted
// and waits for them to exit. Repeated calls have no effect.
func (a *WorkerArray) Terminate() {
	a.state.Lock()
	if !a.terminated {
		a.terminated = true
		close(a.jobs)
	}
	a.state.Unlock()
	a.exited.Wait()
}
