package msp430

// AccessContext parameterizes a single memory operation: the address, the
// kind of access, and its width.
type AccessContext struct {
	Address uint16
	Kind    AccessKind
	Width   Width
}

// Width is the size of a memory access.
type Width int

const (
	WidthByte Width = 1
	WidthWord Width = 2
)

// AccessEvent is emitted synchronously after every successful memory
// operation, before the triggering call returns.
type AccessEvent struct {
	Context AccessContext
	Region  Region
	Cycles  int
	// Value holds the byte or word read, written, or fetched.
	Value uint16
}

// ViolationEvent is emitted synchronously after every failed memory
// operation, carrying the error that was also returned to the caller.
type ViolationEvent struct {
	Context AccessContext
	Message string
	Err     error
}

// Observer receives access/violation notifications. A no-op default (see
// NopObserver) keeps the hot path free of allocation when nobody is
// listening. Handlers run synchronously on the caller's thread
// and must not re-enter the controller for the same operation.
type Observer interface {
	OnAccess(e AccessEvent)
	OnViolation(e ViolationEvent)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) OnAccess(AccessEvent)       {}
func (NopObserver) OnViolation(ViolationEvent) {}

// Statistics tracks controller-wide counters. TotalOperations is always the
// sum of the three access-kind counters.
type Statistics struct {
	TotalReads             uint64
	TotalWrites            uint64
	TotalInstructionFetches uint64
	TotalViolations        uint64
	TotalCycles            uint64
}

// TotalOperations returns TotalReads + TotalWrites + TotalInstructionFetches.
func (s *Statistics) TotalOperations() uint64 {
	return s.TotalReads + s.TotalWrites + s.TotalInstructionFetches
}

func (s *Statistics) recordAccess(kind AccessKind, cycles int) {
	switch kind {
	case AccessRead:
		s.TotalReads++
	case AccessWrite:
		s.TotalWrites++
	case AccessExecute:
		s.TotalInstructionFetches++
	}
	s.TotalCycles += uint64(cycles)
}

func (s *Statistics) recordViolation() {
	s.TotalViolations++
}

// Reset zeroes all counters.
func (s *Statistics) Reset() {
	*s = Statistics{}
}
