package fs

import (
	"os"

	"github.com/fwojciec/rfqtrack"
)

var _ rfqtrack.FileSizer = Sizer{}

// Sizer reads file sizes from disk.
type Sizer struct{}

// FileSize returns the size of the regular file at path.
func (Sizer) FileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}
