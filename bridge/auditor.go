package bridge

// Auditor is notified of security-relevant invocation attempts.
// It is injected per bridge through Options, never held globally.
type Auditor interface {
	// OnGetClassBlocked is called once for every blocked attempt to call the
	// reflective type accessor. caller identifies the calling party.
	OnGetClassBlocked(caller string)
}

// AuditorFunc adapts a function to Auditor.
type AuditorFunc func(caller string)

func (f AuditorFunc) OnGetClassBlocked(caller string) { f(caller) }
