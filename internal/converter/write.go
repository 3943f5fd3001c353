// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package converter // import "utf8conv.app/internal/converter"

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFile atomically replaces name with data. Until the final rename, data
// lives in a temporary file in the same directory, which is removed on any
// failure.
func writeFile(name string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("converter: create temp file: %w", err)
	}

	tmpName := f.Name()
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = f.Close()
		}
		_ = os.Remove(tmpName)
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("converter: write %q: %w", tmpName, err)
	} else if err = f.Chmod(perm); err != nil {
		return fmt.Errorf("converter: chmod %q: %w", tmpName, err)
	} else if err = f.Sync(); err != nil {
		return fmt.Errorf("converter: sync %q: %w", tmpName, err)
	}

	closed = true
	if err = f.Close(); err != nil {
		return fmt.Errorf("converter: close %q: %w", tmpName, err)
	}

	if err = os.Rename(tmpName, name); err != nil {
		return fmt.Errorf("converter: rename temp file: %w", err)
	}
	return nil
}
