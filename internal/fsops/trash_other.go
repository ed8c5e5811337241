//go:build !unix && !windows

package fsops

type unsupportedTrasher struct{}

func newPlatformTrasher(Options) Trasher {
	return unsupportedTrasher{}
}

func homeTrashDir(string) (string, error) {
	return "", nil
}

func (unsupportedTrasher) Trash(string) (string, error) {
	return "", ErrUnsupported
}
