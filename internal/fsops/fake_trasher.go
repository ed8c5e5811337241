package fsops

// FakeTrasher implements Trasher for testing
// Records all trash calls without touching the filesystem
type FakeTrasher struct {
	Calls    []string
	Location string
	Err      error
}

func (f *FakeTrasher) Trash(path string) (string, error) {
	f.Calls = append(f.Calls, "trash:"+path)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Location, nil
}
