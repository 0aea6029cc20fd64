package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/tailor-intake/log"
	"github.com/pkg/errors"
)

const DefaultTimeout = 15 * time.Second

// MaxKeptErrors bounds the failures held for Wait; older ones are only in
// the log.
const MaxKeptErrors = 20

// Dispatcher runs side effects after the primary write has committed.
// Tasks are detached from the request that started them, get their own
// timeout and are attempted once; failures are logged and kept for Wait.
type Dispatcher struct {
	timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.Mutex
	errs   []error
	failed int
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{timeout: timeout}
}

func (d *Dispatcher) Go(name string, task func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := run(ctx, task); err != nil {
			log.With(log.Fields{"task": name, "error": err}).Warn("dispatch.failed")
			d.record(errors.Wrap(err, name))
			return
		}
		log.Debugf("dispatch.done: %s", name)
	}()
}

func run(ctx context.Context, task func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

func (d *Dispatcher) record(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failed++
	if len(d.errs) == MaxKeptErrors {
		d.errs = append(d.errs[:0], d.errs[1:]...)
	}
	d.errs = append(d.errs, err)
}

// Failed returns how many tasks failed since the previous Wait.
func (d *Dispatcher) Failed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}

// Wait blocks until every started task has finished and returns the last
// MaxKeptErrors failures collected since the previous Wait.
func (d *Dispatcher) Wait() error {
	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	var merr *multierror.Error
	if dropped := d.failed - len(d.errs); dropped > 0 {
		merr = multierror.Append(merr, fmt.Errorf("%d earlier failures not kept", dropped))
	}
	merr = multierror.Append(merr, d.errs...)
	d.errs = nil
	d.failed = 0
	return merr.ErrorOrNil()
}
