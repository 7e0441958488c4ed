package lifecycle

import (
	"os"

	"github.com/mason-org/mason-go/internal/linker"
)

// journal accumulates the filesystem side effects of one Install call so a
// failure midway can be unwound precisely: every created link destination
// is removed, then the package directory is dropped, mirroring spec.md
// §9's "Scoped rollback" redesign note (Open Question O-2) rather than a
// bare rmtree-only revert.
type journal struct {
	pkgDir     string
	createdDir bool
	links      []linker.Linked
	committed  bool
}

func newJournal(pkgDir string) *journal {
	return &journal{pkgDir: pkgDir}
}

func (j *journal) mkdirAll(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		j.createdDir = true
	}
	return os.MkdirAll(dir, 0o755)
}

func (j *journal) recordLinks(links []linker.Linked) {
	j.links = append(j.links, links...)
}

func (j *journal) commit() {
	j.committed = true
}

// rollback unlinks every journaled destination in reverse creation order,
// then removes the package directory if this journal created it. It is a
// no-op once commit has been called.
func (j *journal) rollback() {
	if j.committed {
		return
	}
	for i := len(j.links) - 1; i >= 0; i-- {
		os.Remove(j.links[i].Path)
	}
	if j.createdDir {
		os.RemoveAll(j.pkgDir)
	}
}
