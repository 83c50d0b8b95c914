//go:build !windows

package credentials

// There is no credential store integration for this platform; callers
// fall back to their own persistence.

func (this *Credentials) ReadFromStore() (supported bool, err error) {
	return false, nil
}

func (this *Credentials) WriteToStore() (supported bool, err error) {
	return false, nil
}
