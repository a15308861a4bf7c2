package kernel

import "fmt"

// Result is the tagged union every syscall handler returns: ok carrying a
// 64-bit value, or err carrying an ErrorKind. The a0 wire encoding negates
// the kind's code, so success values must stay below the error band at the
// top of the 64-bit range; every value the kernel produces does.
type Result struct {
	ok    bool
	value uint64
	kind  ErrorKind
}

// Ok returns a success result carrying value.
func Ok(value uint64) Result {
	return Result{ok: true, value: value}
}

// Err returns an error result carrying kind.
func Err(kind ErrorKind) Result {
	return Result{kind: kind}
}

// IsOK reports whether the result is a success.
func (r Result) IsOK() bool {
	return r.ok
}

// Value returns the success value; zero for errors.
func (r Result) Value() uint64 {
	if !r.ok {
		return 0
	}
	return r.value
}

// Kind returns the error kind; zero for successes.
func (r Result) Kind() ErrorKind {
	if r.ok {
		return 0
	}
	return r.kind
}

// Encode produces the a0 register image: the value itself on success, the
// negated error code on failure.
func (r Result) Encode() uint64 {
	if r.ok {
		return r.value
	}
	return uint64(-int64(r.kind))
}

// Decode is the exact inverse of Encode, shared with the userspace stub and
// the test harness. Values in the error band decode back to their kind.
func Decode(a0 uint64) Result {
	v := int64(a0)
	if v < 0 && v > -int64(errorKindCount) {
		return Err(ErrorKind(-v))
	}
	return Ok(a0)
}

// String renders the result for logs.
func (r Result) String() string {
	if r.ok {
		return fmt.Sprintf("ok(%#x)", r.value)
	}
	return fmt.Sprintf("err(%s)", r.kind)
}
