package vm

import "linh/bytecode"

// tryFrame mirrors one active bytecode.TryOperand: where to resume if
// the guarded block raises (or, having none, where to keep looking), and
// how far to unwind the call stack and operand stack to get there.
type tryFrame struct {
	catchTargets  []int
	catchNames    []string
	finallyTarget int

	frameIndex int // index into vm.frames owning this try
	stackBase  int // operand stack height when TRY_PUSH ran
}

func newTryFrame(op bytecode.TryOperand, frameIndex, stackBase int) tryFrame {
	return tryFrame{
		catchTargets:  op.CatchTargets,
		catchNames:    op.CatchNames,
		finallyTarget: op.FinallyTarget,
		frameIndex:    frameIndex,
		stackBase:     stackBase,
	}
}
