package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauern/razd/internal/backup"
	"github.com/klauern/razd/internal/detector"
	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/logging"
	"github.com/klauern/razd/internal/model"
	"github.com/klauern/razd/internal/parser"
	"github.com/klauern/razd/internal/tracking"
	"github.com/klauern/razd/internal/util"
)

const defaultPerm = 0o644

// Options configures a Manager.
type Options struct {
	// Rename moves finished temporary files into place. Nil uses os.Rename.
	Rename util.RenameFunc
}

// Manager synchronizes the manifests of a project.
type Manager struct {
	store  *tracking.Store
	port   ConfirmationPort
	rename util.RenameFunc
}

// New returns a Manager. A nil port declines every question.
func New(store *tracking.Store, port ConfirmationPort, opts Options) *Manager {
	if port == nil {
		port = Decline{}
	}
	rename := opts.Rename
	if rename == nil {
		rename = os.Rename
	}
	return &Manager{store: store, port: port, rename: rename}
}

// run carries the state of one SyncIfNeeded call.
type run struct {
	*Manager
	policy       Policy
	root         string
	razdfilePath string
	misePath     string
	outcome      *Outcome
}

// SyncIfNeeded brings the manifests in root back in line with each other
// and returns what it did. A source file that cannot be parsed is a
// configuration error; a target that cannot be parsed is overwritten.
func (m *Manager) SyncIfNeeded(ctx context.Context, root string, policy Policy) (*Outcome, error) {
	if policy.SkipAll {
		return &Outcome{Result: Skipped}, nil
	}
	defer logging.Timer(ctx, "sync")()

	r := &run{
		Manager:      m,
		policy:       policy,
		root:         root,
		razdfilePath: filepath.Join(root, parser.RazdfileName),
		misePath:     filepath.Join(root, parser.MiseName),
		outcome:      &Outcome{},
	}

	if !util.FileExists(r.razdfilePath) && !util.FileExists(r.misePath) {
		r.outcome.Result = NoChangesNeeded
		return r.outcome, nil
	}

	current, err := detector.Scan(root)
	if err != nil {
		return nil, err
	}
	rec, err := m.store.Load(root)
	if err != nil {
		return nil, err
	}
	state := detector.Classify(current, detector.Stored(rec))
	r.outcome.State = state

	log := logging.WithContext(ctx)
	log.Debug("classified project", logging.Project(root), logging.State(state))

	switch state {
	case detector.NoChanges:
		r.outcome.Result = NoChangesNeeded
	case detector.RazdfileChanged:
		err = r.fromRazdfile(ctx)
	case detector.MiseChanged:
		err = r.fromMise(ctx)
	case detector.BothChanged:
		err = r.resolveBoth(ctx)
	}
	if err != nil {
		return nil, err
	}

	log.Info("sync finished", logging.Project(root), logging.Direction(r.outcome.Result))
	return r.outcome, nil
}

// fromRazdfile regenerates mise.toml from the Razdfile. A Razdfile without
// tools cannot describe mise.toml, so an existing mise.toml is imported
// instead.
func (r *run) fromRazdfile(ctx context.Context) error {
	var razd *model.Manifest
	if util.FileExists(r.razdfilePath) {
		m, err := r.source(r.razdfilePath, parser.FormatRazdfile)
		if err != nil {
			return err
		}
		razd = m
	}

	if !razd.HasTools() {
		if !util.FileExists(r.misePath) {
			return r.finish(NoChangesNeeded)
		}
		// a missing Razdfile is confirmed by fromMise
		if razd != nil && !r.policy.AutoApprove {
			ok, err := r.port.Confirm(ctx, Question{Kind: AskImportMise, Path: r.razdfilePath})
			if err != nil {
				return err
			}
			if !ok {
				r.outcome.Result = Skipped
				return nil
			}
		}
		return r.fromMise(ctx)
	}

	var base *model.Manifest
	if existing, _, err := parser.ParseFile(r.misePath, parser.FormatMise); err == nil {
		base = existing
	} else if !errors.Is(err, fs.ErrNotExist) {
		logging.WithContext(ctx).Warn("overwriting mise.toml that could not be parsed",
			logging.Path(r.misePath), logging.Err(err))
	}

	content, err := parser.Render(parser.MiseFromTools(razd.Tools, base), parser.FormatMise)
	if err != nil {
		return err
	}
	if err := r.write(ctx, r.misePath, content); err != nil {
		return err
	}
	return r.finish(RazdfileToMise)
}

// fromMise replaces the tool section of the Razdfile with the content of
// mise.toml, creating a minimal Razdfile when there is none. A deleted
// mise.toml is regenerated from the Razdfile instead.
func (r *run) fromMise(ctx context.Context) error {
	if !util.FileExists(r.misePath) {
		if util.FileExists(r.razdfilePath) {
			return r.fromRazdfile(ctx)
		}
		return r.finish(NoChangesNeeded)
	}

	mise, err := r.source(r.misePath, parser.FormatMise)
	if err != nil {
		return err
	}

	var existing []byte
	if util.FileExists(r.razdfilePath) {
		// #nosec G304 - razdfilePath is inside the project root
		data, err := os.ReadFile(r.razdfilePath)
		if err != nil {
			return rerrors.IO(r.razdfilePath, "failed to read", err)
		}
		existing = data
	} else if !r.policy.AutoApprove {
		ok, err := r.port.Confirm(ctx, Question{Kind: AskCreateRazdfile, Path: r.razdfilePath})
		if err != nil {
			return err
		}
		if !ok {
			r.outcome.Result = Skipped
			return nil
		}
	}

	tools := mise.Tools
	if tools == nil {
		tools = model.NewToolSection()
	}
	content, err := parser.RazdfileWithTools(existing, tools)
	if errors.Is(err, rerrors.ErrParse) {
		logging.WithContext(ctx).Warn("replacing Razdfile that could not be parsed",
			logging.Path(r.razdfilePath), logging.Err(err))
		content, err = parser.RazdfileWithTools(nil, tools)
	}
	if err != nil {
		return err
	}
	if err := r.write(ctx, r.razdfilePath, content); err != nil {
		return err
	}
	return r.finish(MiseToRazdfile)
}

// resolveBoth handles a change on both sides. Auto-approve lets the
// Razdfile win; otherwise the user picks.
func (r *run) resolveBoth(ctx context.Context) error {
	if r.policy.AutoApprove {
		return r.fromRazdfile(ctx)
	}

	preview := NewConflictPreview(r.razdfilePath, r.misePath,
		r.previewTools(ctx, r.razdfilePath, parser.FormatRazdfile),
		r.previewTools(ctx, r.misePath, parser.FormatMise))

	choice, err := r.port.ResolveConflict(ctx, preview)
	if err != nil {
		return err
	}
	logging.WithContext(ctx).Debug("conflict resolved", "resolution", choice.String())

	switch choice {
	case ResolveUseRazdfile:
		return r.fromRazdfile(ctx)
	case ResolveUseMise:
		return r.fromMise(ctx)
	default:
		r.outcome.Result = Conflict
		return nil
	}
}

func (r *run) previewTools(ctx context.Context, path string, format parser.Format) *model.ToolSection {
	if !util.FileExists(path) {
		return nil
	}
	m, _, err := parser.ParseFile(path, format)
	if err != nil {
		logging.WithContext(ctx).Debug("preview without unparseable file", logging.Path(path), logging.Err(err))
		return nil
	}
	return m.Tools
}

// source parses the file a sync reads from. Failure is fatal.
func (r *run) source(path string, format parser.Format) (*model.Manifest, error) {
	m, _, err := parser.ParseFile(path, format)
	if err != nil {
		return nil, rerrors.Config(fmt.Sprintf("cannot sync from %s", format), err)
	}
	return m, nil
}

// write replaces path with content, backing up the previous version
// first when the policy asks for it. Identical content is left alone.
func (r *run) write(ctx context.Context, path string, content []byte) error {
	log := logging.WithContext(ctx)
	perm := os.FileMode(defaultPerm)

	// #nosec G304 - path is a manifest inside the project root
	current, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(current, content) {
			log.Debug("content unchanged, not writing", logging.Path(path))
			return nil
		}
		if info, statErr := os.Stat(path); statErr == nil {
			perm = info.Mode().Perm()
		}
		if err := r.backup(ctx, path); err != nil {
			return err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return rerrors.IO(path, "failed to read", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := util.WriteFileAtomicWith(path, content, perm, r.rename); err != nil {
		return rerrors.IO(path, "failed to write", err)
	}
	r.outcome.Written = append(r.outcome.Written, path)
	log.Info("wrote manifest", logging.Path(path))
	return nil
}

func (r *run) backup(ctx context.Context, path string) error {
	if !r.policy.MakeBackups {
		return nil
	}
	if !r.policy.AutoApprove {
		ok, err := r.port.Confirm(ctx, Question{Kind: AskBackup, Path: path})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	meta, err := backup.Create(path, backup.Options{Rename: r.rename})
	if err != nil {
		return err
	}
	r.outcome.Backups = append(r.outcome.Backups, meta)
	return nil
}

// finish records the digests of both files as the new baseline.
func (r *run) finish(result Result) error {
	current, err := detector.Scan(r.root)
	if err != nil {
		return err
	}
	rec, err := r.store.Save(r.root, current.Razdfile, current.Mise)
	if err != nil {
		return err
	}
	r.outcome.Result = result
	r.outcome.Record = rec
	return nil
}
