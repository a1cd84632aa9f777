package normalize

import "github.com/gyeh/pacstays/internal/refdata"

// ProviderResolver maps raw provider identifiers to canonical facility
// identity. Lookup order: static override table, then the general
// provider dimension, then the name string that accompanied the charge.
// The remap and coalesce corrections run after the lookup, never before,
// because they override whatever it returned.
type ProviderResolver struct {
	overrides map[string]refdata.ProviderInfo
	dimension map[string]string
	remaps    map[string]refdata.ProviderRemap
	coalesces map[string]string
}

// NewProviderResolver builds a resolver from the corrections tables and
// the provider dimension (provider id -> formatted display name).
func NewProviderResolver(corr *refdata.Corrections, dimension map[string]string) *ProviderResolver {
	remaps := make(map[string]refdata.ProviderRemap, len(corr.ProviderRemaps))
	for _, rm := range corr.ProviderRemaps {
		remaps[rm.FromID] = rm
	}
	coalesces := make(map[string]string, len(corr.NameCoalesces))
	for _, nc := range corr.NameCoalesces {
		coalesces[nc.From] = nc.To
	}
	return &ProviderResolver{
		overrides: corr.ProviderOverrides,
		dimension: dimension,
		remaps:    remaps,
		coalesces: coalesces,
	}
}

// Resolve returns the canonical provider id and facility identity for a
// raw provider identifier. billedName is the name string carried on the
// raw charge, used as the last-resort display name.
func (r *ProviderResolver) Resolve(providerID, billedName string) (string, refdata.ProviderInfo) {
	var info refdata.ProviderInfo
	if ov, ok := r.overrides[providerID]; ok {
		info = ov
	} else if name, ok := r.dimension[providerID]; ok {
		info = refdata.ProviderInfo{ParentFacility: name, DisplayName: name}
	} else {
		info = refdata.ProviderInfo{ParentFacility: billedName, DisplayName: billedName}
	}

	id := providerID
	if rm, ok := r.remaps[id]; ok {
		id = rm.ToID
		info = rm.Info
	}
	if canonical, ok := r.coalesces[info.DisplayName]; ok {
		info.DisplayName = canonical
	}
	return id, info
}
