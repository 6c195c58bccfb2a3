package hierarchy

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	entityProperty = "property"
	entityUnit     = "unit"
	entitySubUnit  = "sub_unit"

	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opList   = "list"

	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
)

// remoteOp describes the remote half of a mutation that already committed locally.
// A non-empty skip means the remote call must not be made.
type remoteOp struct {
	entity string
	op     string
	id     string
	skip   string
	run    func(ctx context.Context) error
}

func (op remoteOp) fields() logrus.Fields {
	return logrus.Fields{"entity": op.entity, "op": op.op, "id": op.id}
}

// mirror hands op off to a background task, or logs the skip
func (s *Store) mirror(op remoteOp) {
	if op.skip == "" && s.gw == nil {
		op.skip = "no remote gateway"
	}
	if op.skip != "" {
		s.log.WithFields(op.fields()).WithField("reason", op.skip).Debug("remote call skipped, entity stays local-only")
		s.metrics.Observe(op.entity, op.op, outcomeSkipped, 0)
		return
	}
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		_ = s.execute(s.baseCtx, op)
	}()
}

// execute runs op in the caller's goroutine, maintaining the in-flight counter,
// metrics and error history
func (s *Store) execute(ctx context.Context, op remoteOp) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.beginRemote()
	start := time.Now()
	err := op.run(ctx)
	elapsed := time.Since(start)
	s.endRemote()

	if err != nil {
		s.metrics.Observe(op.entity, op.op, outcomeError, elapsed)
		s.recordFailure(op, err)
		return err
	}
	s.metrics.Observe(op.entity, op.op, outcomeSuccess, elapsed)
	s.log.WithFields(op.fields()).Debug("remote call succeeded")
	return nil
}

func (s *Store) beginRemote() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	s.metrics.InFlight(1)
}

func (s *Store) endRemote() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
	s.metrics.InFlight(-1)
}

func (s *Store) recordFailure(op remoteOp, err error) {
	msg := fmt.Sprintf("%s %s %s: %v", op.op, op.entity, op.id, err)
	s.log.WithFields(op.fields()).WithError(err).Warn("remote call failed, local state kept")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
	s.synced = false
	s.errs = append(s.errs, msg)
	if len(s.errs) > maxErrorHistory {
		s.errs = s.errs[len(s.errs)-maxErrorHistory:]
	}
}
