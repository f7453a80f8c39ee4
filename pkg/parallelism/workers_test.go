package parallelism

import (
	"errors"
	"sync"
	"testing"
)

// TestWorkerArray tests that workloads are partitioned across workers.
func TestWorkerArray(t *testing.T) {
	array := NewWorkerArray(4)
	defer array.Terminate()
	if array.Size() != 4 {
		t.Fatal("unexpected array size:", array.Size())
	}

	// Have each worker fill its share of a slice.
	values := make([]int, 19)
	err := array.Do(func(index, size int) error {
		for i := index; i < len(values); i += size {
			values[i] = i * i
		}
		return nil
	})
	if err != nil {
		t.Fatal("work failed:", err)
	}
	for i, v := range values {
		if v != i*i {
			t.Error("value mismatch at index", i, ":", v, "!=", i*i)
		}
	}
}

// TestWorkerArrayError tests that the lowest worker error is reported.
func TestWorkerArrayError(t *testing.T) {
	array := NewWorkerArray(3)
	defer array.Terminate()
	first := errors.New("first")
	err := array.Do(func(index, _ int) error {
		switch index {
		case 1:
			return first
		case 2:
			return errors.New("second")
		}
		return nil
	})
	if err != first {
		t.Error("unexpected error:", err)
	}
}

// TestWorkerArrayDefaultSize tests that a non-positive size selects a default.
func TestWorkerArrayDefaultSize(t *testing.T) {
	array := NewWorkerArray(0)
	defer array.Terminate()
	if array.Size() < 1 {
		t.Error("invalid default array size:", array.Size())
	}
	array.Terminate()
}

// TestWorkerArrayTerminated tests that termination is idempotent and that
// later submissions fail.
func TestWorkerArrayTerminated(t *testing.T) {
	array := NewWorkerArray(2)
	array.Terminate()
	array.Terminate()
	if err := array.Do(func(_, _ int) error { return nil }); err != ErrTerminated {
		t.Error("unexpected error after termination:", err)
	}
}

// TestWorkerArrayConcurrentDo tests that workloads submitted concurrently
// each see every partition exactly once.
func TestWorkerArrayConcurrentDo(t *testing.T) {
	array := NewWorkerArray(3)
	defer array.Terminate()
	done := make(chan error, 4)
	for w := 0; w < 4; w++ {
		go func() {
			var lock sync.Mutex
			seen := make(map[int]int)
			err := array.Do(func(index, count int) error {
				if count != 3 {
					return errors.New("unexpected partition count")
				}
				lock.Lock()
				seen[index]++
				lock.Unlock()
				return nil
			})
			if err == nil && (len(seen) != 3 || seen[0] != 1 || seen[1] != 1 || seen[2] != 1) {
				err = errors.New("partitions not each run once")
			}
			done <- err
		}()
	}
	for w := 0; w < 4; w++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
}
