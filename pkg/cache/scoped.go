package cache

// ScopedKeyer prefixes the keys of another Keyer so several deployments can
// share one Redis without colliding.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prepends prefix to the keys of inner, or of the default
// keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FramesKey implements Keyer.
func (k *ScopedKeyer) FramesKey(scenarioHash string, opts FramesKeyOpts) string {
	return k.prefix + k.inner.FramesKey(scenarioHash, opts)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(framesHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(framesHash, opts)
}
