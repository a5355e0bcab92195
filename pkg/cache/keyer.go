package cache

// PlanKeyOpts carries the inputs that affect composition output beyond
// the record itself.
type PlanKeyOpts struct {
	ConfigHash string // fingerprint of the layout config
	ImageHash  string // fingerprint of the poster image, empty when missing
}

// ArtifactKeyOpts carries the inputs that affect a rendered artifact
// beyond the plan itself.
type ArtifactKeyOpts struct {
	Format string  // output format (svg, png, pdf, json)
	Scale  float64 // raster scale, ignored for vector formats
}

// Keyer generates cache keys for the two cacheable pipeline stages.
type Keyer interface {
	// PlanKey generates a key for composed plan caching.
	PlanKey(recordHash string, opts PlanKeyOpts) string

	// ArtifactKey generates a key for rendered artifact caching.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PlanKey generates a key for composed plan caching.
func (k *DefaultKeyer) PlanKey(recordHash string, opts PlanKeyOpts) string {
	return hashKey("plan", recordHash, opts.ConfigHash, opts.ImageHash)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts.Format, opts.Scale)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g.
// per-event or per-user cache partitions on a shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlanKey generates a prefixed key for plan caching.
func (k *ScopedKeyer) PlanKey(recordHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(recordHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}
