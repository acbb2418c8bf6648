// internal/receipt/store_test.go
package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo records saves and serves a canned load result.
type fakeRepo struct {
	saved   []Receipt
	loaded  []Receipt
	saveErr error
	loadErr error
}

func (f *fakeRepo) SaveReceipt(_ context.Context, r *Receipt) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *r)
	return nil
}

func (f *fakeRepo) LoadReceipts(_ context.Context) ([]Receipt, error) {
	return f.loaded, f.loadErr
}

func sampleReceipt(token string) Receipt {
	return Receipt{
		Token:     token,
		Context:   ContextCafeteria,
		StudentID: "ERP-1001",
		Method:    "UPI",
		Subtotal:  160,
		Total:     176.4,
		CreatedAt: time.Date(2026, 2, 1, 13, 30, 0, 0, time.UTC),
	}
}

func TestAppendAndFindByToken(t *testing.T) {
	repo := &fakeRepo{}
	store := NewStore(repo)

	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-1")))

	got, ok := store.FindByToken("tok-1")
	require.True(t, ok)
	assert.Equal(t, 176.4, got.Total)
	require.Len(t, repo.saved, 1)

	_, ok = store.FindByToken("tok-missing")
	assert.False(t, ok)
	t.Log("✅ Appended receipt retrievable and persisted")
}

func TestAppendRejectsDuplicateToken(t *testing.T) {
	store := NewStore(nil)

	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-1")))
	err := store.Append(context.Background(), sampleReceipt("tok-1"))
	assert.ErrorIs(t, err, ErrTokenExists)
	assert.Equal(t, 1, store.Len())
	t.Log("✅ Token collision rejected without overwriting")
}

func TestAppendSurvivesRepositoryFailure(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("disk on fire")}
	store := NewStore(repo)

	// Payment already succeeded upstream; the receipt must stay visible
	// even when the write-through fails.
	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-1")))
	_, ok := store.FindByToken("tok-1")
	assert.True(t, ok)
	t.Log("✅ Receipt kept in memory despite persistence failure")
}

func TestFindByStage(t *testing.T) {
	store := NewStore(nil)

	year2 := sampleReceipt("tok-y2")
	year2.Context = ContextAdmission
	year2.Stage = 2
	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-cafe")))
	require.NoError(t, store.Append(context.Background(), year2))

	got, ok := store.FindByStage("ERP-1001", 2)
	require.True(t, ok)
	assert.Equal(t, "tok-y2", got.Token)

	_, ok = store.FindByStage("ERP-1001", 3)
	assert.False(t, ok)
	t.Log("✅ Stage lookup matched only admission receipts")
}

func TestFindByStageScopedToStudent(t *testing.T) {
	store := NewStore(nil)

	paid := sampleReceipt("tok-y1")
	paid.Context = ContextAdmission
	paid.Stage = 1
	require.NoError(t, store.Append(context.Background(), paid))

	// Another student's paid stage must stay invisible to this one.
	_, ok := store.FindByStage("ERP-2002", 1)
	assert.False(t, ok)

	got, ok := store.FindByStage("ERP-1001", 1)
	require.True(t, ok)
	assert.Equal(t, "tok-y1", got.Token)
	t.Log("✅ Stage lookup scoped to the owning student")
}

func TestByStudentFilters(t *testing.T) {
	store := NewStore(nil)

	other := sampleReceipt("tok-other")
	other.StudentID = "ERP-2002"
	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-1")))
	require.NoError(t, store.Append(context.Background(), other))
	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-2")))

	mine := store.ByStudent("ERP-1001")
	require.Len(t, mine, 2)
	assert.Equal(t, "tok-1", mine[0].Token)
	assert.Equal(t, "tok-2", mine[1].Token)
	t.Log("✅ Student filter preserved append order")
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	repo := &fakeRepo{loadErr: errors.New("corrupt table")}
	store := NewStore(repo)

	store.Load(context.Background())
	assert.Equal(t, 0, store.Len())

	// The store still accepts new receipts after a failed load.
	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-1")))
	t.Log("✅ Failed load degraded to an empty working store")
}

func TestLoadRestoresSavedReceipts(t *testing.T) {
	repo := &fakeRepo{loaded: []Receipt{sampleReceipt("tok-a"), sampleReceipt("tok-b")}}
	store := NewStore(repo)

	store.Load(context.Background())
	assert.Equal(t, 2, store.Len())

	// Tokens from the loaded set still collide with new appends.
	err := store.Append(context.Background(), sampleReceipt("tok-a"))
	assert.ErrorIs(t, err, ErrTokenExists)
	t.Log("✅ Load rebuilt the token index")
}

func TestByContextFilters(t *testing.T) {
	store := NewStore(nil)

	adm := sampleReceipt("tok-adm")
	adm.Context = ContextAdmission
	adm.Stage = 1
	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-1")))
	require.NoError(t, store.Append(context.Background(), adm))
	require.NoError(t, store.Append(context.Background(), sampleReceipt("tok-2")))

	cafe := store.ByContext(ContextCafeteria)
	require.Len(t, cafe, 2)
	assert.Equal(t, "tok-1", cafe[0].Token)
	assert.Equal(t, "tok-2", cafe[1].Token)
	t.Log("✅ Context filter preserved append order")
}
