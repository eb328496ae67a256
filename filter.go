package blkdiag

// DeviceFilter is filter function that returns true if the matching device is
// accepted false otherwise.
type DeviceFilter func(Device) bool

// StringSet is a set of strings used for fstype and device name matching.
type StringSet map[string]struct{}

// NewStringSet builds a set from the provided values.
func NewStringSet(values ...string) StringSet {
	s := StringSet{}
	for _, v := range values {
		s[v] = struct{}{}
	}

	return s
}

// Contains returns true if v is in the set.
func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// IsCheckable returns true if the device has one of the allowed filesystem
// types, is at least minSize bytes and is not named in skipped.
func IsCheckable(d Device, allowedFSTypes StringSet, minSize uint64, skipped StringSet) bool {
	return allowedFSTypes.Contains(d.FSType) &&
		d.Size >= minSize &&
		!skipped.Contains(d.Name)
}

// FilterConfig holds the criteria a device has to meet to be checked.
type FilterConfig struct {
	FSTypes     StringSet
	MinSize     uint64
	SkipDevices StringSet
}

// IsCheckable applies the filter criteria to d.
func (fc FilterConfig) IsCheckable(d Device) bool {
	return IsCheckable(d, fc.FSTypes, fc.MinSize, fc.SkipDevices)
}

// Filter returns the configuration as a DeviceFilter.
func (fc FilterConfig) Filter() DeviceFilter {
	return fc.IsCheckable
}

// Select returns the devices of ds accepted by filter, in order.
func (ds DeviceSet) Select(filter DeviceFilter) DeviceSet {
	selected := DeviceSet{}

	for _, d := range ds {
		if filter(d) {
			selected = append(selected, d)
		}
	}

	return selected
}
