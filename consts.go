package logging

import "time"

const (
	errMsgNilService    = "Logger service is nil."
	errMsgNilConfig     = "Logging config is nil."
	errMsgConfigInvalid = "Logging configuration is invalid."
	errMsgNilModel      = "Record model is nil."
)

// defaultPoolBuffer is the capacity of the delivery queue shared by the
// pool workers. Writers block once the queue is full so records are never
// dropped on the producer side.
const defaultPoolBuffer = 1024

// opPollInterval is how often Close samples the active-operations counter
// while waiting for in-flight log operations to drain.
const opPollInterval = time.Millisecond

// minFlushTimeout is the smallest bound Close grants the pool flush when the
// operations wait has consumed the shutdown budget.
const minFlushTimeout = 5 * time.Millisecond
