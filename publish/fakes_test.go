package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var testExtensions = []string{"deb", "rpm", "dsc", "gem"}

// fakeWorkspace serves files from memory and tracks the streams it hands out.
type fakeWorkspace struct {
	files   map[string][]byte
	opened  []*trackedStream
	openErr map[string]error
}

func newFakeWorkspace(files map[string]string) *fakeWorkspace {
	ws := &fakeWorkspace{files: map[string][]byte{}, openErr: map[string]error{}}
	for path, content := range files {
		ws.files[path] = []byte(content)
	}
	return ws
}

func (w *fakeWorkspace) Open(_ context.Context, relativePath string) (io.ReadSeekCloser, error) {
	if err := w.openErr[relativePath]; err != nil {
		return nil, err
	}
	content, ok := w.files[relativePath]
	if !ok {
		return nil, fmt.Errorf("%s: %w", relativePath, fs.ErrNotExist)
	}
	stream := &trackedStream{Reader: bytes.NewReader(content)}
	w.opened = append(w.opened, stream)
	return stream, nil
}

func (w *fakeWorkspace) allClosed() bool {
	for _, stream := range w.opened {
		if !stream.closed {
			return false
		}
	}
	return true
}

type trackedStream struct {
	*bytes.Reader
	closed bool
}

func (s *trackedStream) Close() error {
	s.closed = true
	return nil
}

// fakeRegistry records uploads. Listing contents consumes part of the payload, like a real upload would.
type fakeRegistry struct {
	contents    map[string][]entities.PackageFile
	contentsErr error
	putErrs     map[string]error
	uploaded    []string
	sourceFiles map[string][]string
	payloads    map[string]string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		contents:    map[string][]entities.PackageFile{},
		putErrs:     map[string]error{},
		sourceFiles: map[string][]string{},
		payloads:    map[string]string{},
	}
}

func (r *fakeRegistry) PutPackage(_ context.Context, pkg *entities.PackageRecord) error {
	r.uploaded = append(r.uploaded, pkg.Filename)
	content, err := io.ReadAll(pkg.Payload)
	if err != nil {
		return err
	}
	r.payloads[pkg.Filename] = string(content)
	names := maps.Keys(pkg.SourceFiles)
	slices.Sort(names)
	r.sourceFiles[pkg.Filename] = names
	return r.putErrs[pkg.Filename]
}

func (r *fakeRegistry) PackageContents(_ context.Context, pkg *entities.PackageRecord) ([]entities.PackageFile, error) {
	buf := make([]byte, 3)
	if _, err := pkg.Payload.Read(buf); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if r.contentsErr != nil {
		return nil, r.contentsErr
	}
	return r.contents[pkg.Filename], nil
}

func files(names ...string) []entities.PackageFile {
	var contents []entities.PackageFile
	for _, name := range names {
		contents = append(contents, entities.PackageFile{Filename: name})
	}
	return contents
}

func offset(pkg *entities.PackageRecord) int64 {
	position, err := pkg.Payload.Seek(0, io.SeekCurrent)
	if err != nil {
		panic(err)
	}
	return position
}
