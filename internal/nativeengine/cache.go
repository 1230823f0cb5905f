package nativeengine

import "sqlitegraph/internal/pattern"

// fastPathCache exposes the engine's single-leg pattern cache to package
// pattern (spec §4.F), mirroring the SQL engine's wiring.
func (e *Engine) fastPathCache() *pattern.Cache { return e.patternCache }

// invalidatePatternCache clears the whole fast-path cache; called from
// every mutating method. pattern.Cache guards itself, so this is safe to
// call while e.mu is already held.
func (e *Engine) invalidatePatternCache() { e.patternCache.Invalidate() }
