package state

// Tuple is the sequence kind used for fixed-arity fields in state
// dicts, e.g. an optimizer's betas pair. Transports that rebuild dicts
// generically (JSON export, rank-0 broadcast) may legally hand back a
// plain []any instead; consumers must treat the two kinds as
// interchangeable and only rely on positional contents.
type Tuple []any
