package objectfs

import (
	"context"
	"fmt"

	"github.com/koustreak/bucketfs/internal/errs"
)

// RenameState is a step of the copy-then-delete rename.
//
//	Copying -> CopyFailed | Copied
//	Copied  -> Deleting -> Done | DeleteFailed
type RenameState int

const (
	RenameCopying RenameState = iota
	RenameCopyFailed
	RenameCopied
	RenameDeleting
	RenameDone
	RenameDeleteFailed
)

func (s RenameState) String() string {
	switch s {
	case RenameCopying:
		return "copying"
	case RenameCopyFailed:
		return "copy_failed"
	case RenameCopied:
		return "copied"
	case RenameDeleting:
		return "deleting"
	case RenameDone:
		return "done"
	case RenameDeleteFailed:
		return "delete_failed"
	default:
		return "unknown"
	}
}

// RenameError reports a rename that stopped in State. After
// RenameDeleteFailed both From and To exist; the copy is not rolled back.
type RenameError struct {
	From  string
	To    string
	State RenameState
	Err   error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s -> %s: %s: %v", e.From, e.To, e.State, e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// Duplicated reports whether the rename left the file at both paths.
func (e *RenameError) Duplicated() bool {
	return e.State == RenameDeleteFailed
}

// Rename copies path to newpath, then deletes path. The source is only
// deleted once the copy is visible at newpath. Failures are *RenameError.
func (a *Adapter) Rename(ctx context.Context, path, newpath string) (bool, error) {
	a.renameStep(path, newpath, RenameCopying)
	ok, err := a.Copy(ctx, path, newpath)
	if err == nil && !ok {
		err = errs.Newf(errs.ErrKindOperationFailed, "%s not found after copy", newpath)
	}
	if err != nil {
		return false, a.renameFailed(path, newpath, RenameCopyFailed, err)
	}
	a.renameStep(path, newpath, RenameCopied)

	a.renameStep(path, newpath, RenameDeleting)
	ok, err = a.Delete(ctx, path)
	if err == nil && !ok {
		err = errs.Newf(errs.ErrKindOperationFailed, "%s still exists after delete", path)
	}
	if err != nil {
		return false, a.renameFailed(path, newpath, RenameDeleteFailed, err)
	}
	a.renameStep(path, newpath, RenameDone)
	return true, nil
}

func (a *Adapter) renameStep(from, to string, s RenameState) {
	a.log.DebugWith("rename", map[string]interface{}{
		"from":  from,
		"to":    to,
		"state": s.String(),
	})
}

func (a *Adapter) renameFailed(from, to string, s RenameState, err error) error {
	a.log.WarnWith("rename failed", err, map[string]interface{}{
		"from":  from,
		"to":    to,
		"state": s.String(),
	})
	return &RenameError{From: from, To: to, State: s, Err: err}
}
