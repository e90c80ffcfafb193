package replay

import "os"

// FileReader reads locally mapped files. The dispatcher resolves relative
// destinations against its root directory before calling Read. Reads
// block only the request that issued them; implementations must not hold
// shared locks.
type FileReader interface {
	Read(path string) ([]byte, error)
}

type osFileReader struct{}

func (osFileReader) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// OSFileReader returns a FileReader backed by the local filesystem.
func OSFileReader() FileReader {
	return osFileReader{}
}
