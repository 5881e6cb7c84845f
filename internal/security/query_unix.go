//go:build unix && !linux

package security

func queryFile(path string, info SecurityInformation) ([]byte, error) {
	return posixDescriptor(path, info)
}
