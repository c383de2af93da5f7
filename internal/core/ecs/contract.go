package ecs

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrContractViolation is wrapped by every panic raised through a Contract.
// Contract violations are programmer errors: callers never branch on them.
var ErrContractViolation = eris.New("ecs contract violation")

// Contract reports broken preconditions, assertions and postconditions.
// A violation is logged and then raised as a panic, which terminates the
// process unless a test recovers it.
type Contract struct {
	log *zap.Logger
}

func NewContract(log *zap.Logger) Contract {
	if log == nil {
		log = zap.NewNop()
	}
	return Contract{log: log}
}

func (c Contract) Logger() *zap.Logger { return c.log }

// Requires checks a precondition of the called operation.
func (c Contract) Requires(ok bool, msg string, fields ...zap.Field) {
	if !ok {
		c.fail("requires", msg, fields)
	}
}

// Assert checks an internal invariant.
func (c Contract) Assert(ok bool, msg string, fields ...zap.Field) {
	if !ok {
		c.fail("assert", msg, fields)
	}
}

// Ensures checks a postcondition.
func (c Contract) Ensures(ok bool, msg string, fields ...zap.Field) {
	if !ok {
		c.fail("ensures", msg, fields)
	}
}

func (c Contract) fail(kind, msg string, fields []zap.Field) {
	c.log.Error("contract violation: "+msg, append(fields, zap.String("contract", kind))...)
	panic(eris.Wrapf(ErrContractViolation, "%s: %s", kind, msg))
}
