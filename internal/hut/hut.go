package hut

// Descriptor identifies one monitored hut.
type Descriptor struct {
	// Name is the display name and the value written to the dataset's Huette column.
	Name string
	// UpstreamID is the hut's identifier in the reservation API.
	UpstreamID int64
	// Latitude/Longitude locate the hut for weather lookups and the map view.
	Latitude  float64
	Longitude float64
	// FixedCapacity is the hut's total bed count including beds that are never
	// bookable online. Zero means unknown; consumers fall back to the largest
	// capacity seen in the latest snapshot.
	FixedCapacity int
}

// Registry is an immutable, ordered collection of hut descriptors. Polling
// order is registry order, so iteration must be deterministic.
type Registry struct {
	huts []Descriptor
}

// NewRegistry builds a registry preserving the given order.
func NewRegistry(huts []Descriptor) *Registry {
	cp := make([]Descriptor, len(huts))
	copy(cp, huts)
	return &Registry{huts: cp}
}

// All returns the descriptors in registry order. Callers must not modify the
// returned slice.
func (r *Registry) All() []Descriptor {
	return r.huts
}

// ByID looks a hut up by its upstream identifier.
func (r *Registry) ByID(id int64) (Descriptor, bool) {
	for _, h := range r.huts {
		if h.UpstreamID == id {
			return h, true
		}
	}
	return Descriptor{}, false
}

// Len reports the number of registered huts.
func (r *Registry) Len() int {
	return len(r.huts)
}

// Default returns the built-in registry of monitored Stubai huts.
func Default() *Registry {
	return NewRegistry([]Descriptor{
		{Name: "Franz Senn Hütte", UpstreamID: 675, Latitude: 47.085, Longitude: 11.195, FixedCapacity: 130},
		{Name: "Regensburger Hütte", UpstreamID: 275, Latitude: 47.054769090700326, Longitude: 11.198342789601003, FixedCapacity: 85},
		{Name: "Starkenburger Hütte", UpstreamID: 693, Latitude: 47.126873249997395, Longitude: 11.279589453978218, FixedCapacity: 90},
	})
}
