package source

import (
	"context"
	"os"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/errors"
)

// File reads matches from a JSON file on every call.
type File struct {
	Path string
}

// NewFile returns a file source after validating the path.
func NewFile(path string) (*File, error) {
	if err := errors.ValidatePath(path, "json"); err != nil {
		return nil, err
	}
	return &File{Path: path}, nil
}

func (f *File) Name() string { return "file" }

// Matches implements [Source]. The championship id is ignored.
func (f *File) Matches(ctx context.Context, _ int) ([]bracket.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "match file %s", f.Path)
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	matches, err := Decode(fh)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "match file %s", f.Path)
	}
	return matches, nil
}
