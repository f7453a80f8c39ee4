package archive

import (
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/mutagen-io/arlink/pkg/logging"
)

// Pool bounds the number of archives whose backing is open at any one time.
// When the bound is exceeded, the least recently read archive's mapping is
// released; it is reopened transparently on its next read. Pool is safe for
// concurrent use.
type Pool struct {
	// logger is the underlying logger.
	logger *logging.Logger
	// lock guards open and evicted.
	lock sync.Mutex
	// open tracks archives with open backings in recency order.
	open *lru.Cache
	// evicted accumulates archives evicted during the current operation.
	evicted []*Archive
}

// NewPool creates a new pool allowing at most maximumOpen open archives. A
// non-positive bound disables eviction.
func NewPool(maximumOpen int, logger *logging.Logger) *Pool {
	if maximumOpen < 0 {
		maximumOpen = 0
	}
	pool := &Pool{
		logger: logger,
		open:   lru.New(maximumOpen),
	}
	pool.open.OnEvicted = func(key lru.Key, _ interface{}) {
		pool.evicted = append(pool.evicted, key.(*Archive))
	}
	return pool
}

// Open opens and indexes the archive at the specified path, tracking it in the
// pool.
func (p *Pool) Open(path string) (*Archive, error) {
	archive, err := open(path, p)
	if err != nil {
		return nil, err
	}
	p.touch(archive)
	return archive, nil
}

// Len returns the number of archives currently tracked as open.
func (p *Pool) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.open.Len()
}

// touch marks an archive as most recently used and releases any archives
// evicted as a result. Closed archives are ignored. The archive lock may be
// acquired while holding the pool lock, but evicted archives are released
// outside of it.
func (p *Pool) touch(archive *Archive) {
	p.lock.Lock()
	if archive.isClosed() {
		p.lock.Unlock()
		return
	}
	p.open.Add(archive, nil)
	evicted := p.evicted
	p.evicted = nil
	p.lock.Unlock()

	for _, e := range evicted {
		if e == archive {
			continue
		}
		p.logger.Debugf("Releasing mapping for %s", e.path)
		if err := e.release(); err != nil {
			p.logger.Warnf("Unable to release mapping for %s: %v", e.path, err)
		}
	}
}

// forget stops tracking an archive.
func (p *Pool) forget(archive *Archive) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.open.Remove(archive)
	p.evicted = nil
}
