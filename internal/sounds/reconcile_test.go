package sounds

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kept := f.create(t, "Kept")
	gone := f.create(t, "Gone")

	put := func(key string) {
		require.NoError(t, f.files.Put(ctx, key, bytes.NewReader([]byte("x")), 1, "audio/mpeg"))
	}
	oldOrphan := fmt.Sprintf("sounds/old_%d_aaaaaa.mp3", fixedNow.Add(-2*time.Hour).Unix())
	freshOrphan := fmt.Sprintf("sounds/fresh_%d_bbbbbb.mp3", fixedNow.Add(-time.Minute).Unix())
	put(oldOrphan)
	put(freshOrphan)
	put("other/untouched.mp3")
	require.NoError(t, f.files.Delete(ctx, gone.FilePath))

	report, err := f.mgr.Reconcile(ctx, false, time.Hour)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{oldOrphan, freshOrphan}, report.Orphans)
	assert.Equal(t, []string{freshOrphan}, report.Skipped)
	assert.Equal(t, []string{gone.FilePath}, report.Missing)
	assert.Empty(t, report.Deleted)
	assert.True(t, f.files.Has(oldOrphan), "dry run deletes nothing")

	report, err = f.mgr.Reconcile(ctx, true, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{oldOrphan}, report.Deleted)
	assert.False(t, f.files.Has(oldOrphan))
	assert.True(t, f.files.Has(freshOrphan))
	assert.True(t, f.files.Has(kept.FilePath))
	assert.True(t, f.files.Has("other/untouched.mp3"))
}
