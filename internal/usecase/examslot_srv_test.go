package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExamSlots_ReturnsFileAsStored(t *testing.T) {
	env := newTestEnv(t)

	want, err := os.ReadFile("testdata/exam_slots.json")
	require.NoError(t, err)

	got, err := env.svc.ExamSlot.Slots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestExamSlots_ReadsEditsWithoutRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"A":{}}`), 0o600))
	svc := NewExamSlotService(path, zap.NewNop())

	got, err := svc.Slots(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":{}}`, string(got))

	require.NoError(t, os.WriteFile(path, []byte(`{"B":{}}`), 0o600))
	got, err = svc.Slots(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"B":{}}`, string(got))
}

func TestExamSlots_Unavailable(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"A":`), 0o600))

	for _, path := range []string{filepath.Join(dir, "missing.json"), invalid} {
		_, err := NewExamSlotService(path, zap.NewNop()).Slots(context.Background())
		assert.ErrorIs(t, err, ErrExamSlotsUnavailable, path)
	}
}
