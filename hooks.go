package dealcore

// Hooks lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A negative marker was written for a key confirmed absent from source.
	NegativeCached(key string)

	// A logically expired payload was served while a rebuild may proceed.
	StaleServed(key string)

	// A rebuild was triggered but the worker pool queue was full.
	// The mutex was released; another read will re-trigger.
	RebuildDropped(key string)

	// A background rebuild loader failed. The stale entry stays in place.
	RebuildError(key string, err error)

	// A malformed entry was deleted on read.
	// reason is one of "corrupt" or "value_decode".
	SelfHeal(key, reason string)

	// The rebuild mutex was busy on a miss; the caller backs off and retries.
	LockContended(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) NegativeCached(string)      {}
func (NopHooks) StaleServed(string)         {}
func (NopHooks) RebuildDropped(string)      {}
func (NopHooks) RebuildError(string, error) {}
func (NopHooks) SelfHeal(string, string)    {}
func (NopHooks) LockContended(string)       {}
