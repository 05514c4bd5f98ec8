package render

import (
	"errors"
	"io"
	"os"

	ferrors "git.home.luguber.info/inful/docrender/internal/foundation/errors"
	"git.home.luguber.info/inful/docrender/internal/logfields"
)

const refuseHint = "pick an empty or different directory, or delete it and render again"

var (
	ErrOutputNotDirectory  = ferrors.FileSystemError("output target exists but is not a directory").Fatal().Build()
	ErrOutputNotRecognized = ferrors.ValidationError("output directory was not generated by this theme; " + refuseHint).Build()
	ErrOutputCreate        = ferrors.FileSystemError("could not create output directory").Fatal().Build()
)

// PrepareOutputDirectory makes dir ready for a render. A missing directory is created, an
// empty one is accepted, one holding output of the current theme is emptied and recreated.
// Anything else is refused and left untouched. The theme must already be resolved.
func (r *Renderer) PrepareOutputDirectory(dir string) error {
	t := r.Theme()
	if t == nil {
		return ErrThemeNotResolved.WithContext("output_dir", dir)
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		r.logger.Error("The output target exists but it is not a directory", logfields.OutputDir(dir))
		return ErrOutputNotDirectory.WithContext("output_dir", dir)
	case err == nil:
		empty, err := isEmptyDir(dir)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "could not read output directory").
				Fatal().WithContext("output_dir", dir).Build()
		}
		if empty {
			return nil
		}
		if !t.IsOutputDirectory(dir) {
			r.logger.Error("The output directory exists but does not seem to be generated documentation; "+refuseHint,
				logfields.OutputDir(dir))
			return ErrOutputNotRecognized.WithContext("output_dir", dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warn("Could not empty the output directory", logfields.OutputDir(dir), logfields.Error(err))
		}
	case !errors.Is(err, os.ErrNotExist):
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "could not stat output directory").
			Fatal().WithContext("output_dir", dir).Build()
	}

	// #nosec G301 -- generated documentation is meant to be world-readable.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Error("Could not create output directory", logfields.OutputDir(dir), logfields.Error(err))
		return ErrOutputCreate.Wrap(err, "output_dir", dir)
	}
	return nil
}

func isEmptyDir(dir string) (bool, error) {
	f, err := os.Open(dir) // #nosec G304 -- configured output directory
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Readdirnames(1); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}
