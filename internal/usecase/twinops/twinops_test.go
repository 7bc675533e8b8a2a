package twinops

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

// fakeSession records the operation sequence the adapters issue so the tests
// can assert on ordering and transaction discipline without a real store.
type fakeSession struct {
	open   bool
	nextID int64
	events []string

	failRemoveName string
}

func (s *fakeSession) Begin(ctx context.Context) error {
	if s.open {
		return errors.New("transaction already open")
	}
	s.open = true
	s.events = append(s.events, "begin")
	return nil
}

func (s *fakeSession) Commit() error {
	if !s.open {
		return errors.New("no open transaction")
	}
	s.open = false
	s.events = append(s.events, "commit")
	return nil
}

func (s *fakeSession) Rollback() error {
	if !s.open {
		return errors.New("no open transaction")
	}
	s.open = false
	s.events = append(s.events, "rollback")
	return nil
}

func (s *fakeSession) InTransaction() bool { return s.open }

func (s *fakeSession) Persist(ctx context.Context, n domain.LocaleNode) error {
	s.nextID++
	n.SetID(s.nextID)
	s.events = append(s.events, "persist:"+n.Locale()+"/"+n.Name())
	return nil
}

func (s *fakeSession) Remove(ctx context.Context, n domain.LocaleNode) error {
	if s.failRemoveName != "" && n.Name() == s.failRemoveName {
		return fmt.Errorf("remove %q: boom", n.Name())
	}
	s.events = append(s.events, "remove:"+n.Locale()+"/"+n.Name())
	return nil
}

func (s *fakeSession) Merge(ctx context.Context, n domain.LocaleNode) error {
	s.events = append(s.events, "merge:"+n.Locale()+"/"+n.Name())
	return nil
}

func (s *fakeSession) NodeByID(ctx context.Context, id int64) (domain.LocaleNode, error) {
	return nil, nil
}

func (s *fakeSession) FindTwin(ctx context.Context, master domain.LocaleNode, locale string) (domain.LocaleNode, error) {
	return master.TwinForLocale(locale), nil
}

func (s *fakeSession) LoadChildren(ctx context.Context, c *domain.LocaleContainer) error {
	return nil
}

func (s *fakeSession) LocalePathByContainer(ctx context.Context, c *domain.LocaleContainer) (*domain.LocalePath, error) {
	return nil, nil
}

func (s *fakeSession) removals() []string {
	var out []string
	for _, e := range s.events {
		if len(e) > 7 && e[:7] == "remove:" {
			out = append(out, e[7:])
		}
	}
	return out
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeSession) {
	t.Helper()
	s := &fakeSession{}
	return NewCoordinator(s), s
}

// twinTree builds a master subtree root/sub/a.properties/greeting in en-US
// plus the es-ES twin of each node.
func twinTree(t *testing.T) (master, twin *domain.LocaleContainer) {
	t.Helper()
	master = domain.NewLocaleContainer("root", "en-US")
	sub := domain.NewLocaleContainer("sub", "en-US")
	master.AddContainer(sub)
	f := domain.NewLocaleFile("a.properties", "en-US", domain.FileKeyValue)
	sub.AddFile(f)
	ct := domain.NewLocaleContent("greeting", "en-US", domain.ContentKeyValue)
	ct.TextValue = "Hello"
	f.AddContent(ct)

	twin = domain.NewLocaleContainer("root", "es-ES")
	require.NoError(t, twin.SetDefaultTwin(master))
	subT := domain.NewLocaleContainer("sub", "es-ES")
	require.NoError(t, subT.SetDefaultTwin(sub))
	twin.AddContainer(subT)
	fT := domain.NewLocaleFile("a.properties", "es-ES", domain.FileKeyValue)
	require.NoError(t, fT.SetDefaultTwin(f))
	subT.AddFile(fT)
	ctT := domain.NewLocaleContent("greeting", "es-ES", domain.ContentKeyValue)
	ctT.TextValue = "Hola"
	require.NoError(t, ctT.SetDefaultTwin(ct))
	fT.AddContent(ctT)
	return master, twin
}

func TestRemoveTwinsBeforeMaster(t *testing.T) {
	coord, s := newTestCoordinator(t)
	master, twin := twinTree(t)

	require.True(t, coord.Containers.RemoveRecursively(context.Background(), master))

	rem := s.removals()
	require.Len(t, rem, 8)
	// The whole es-ES subtree goes first, leaves before parents; the en-US
	// master subtree follows.
	assert.Equal(t, []string{
		"es-ES/greeting", "es-ES/a.properties", "es-ES/sub", "es-ES/root",
		"en-US/greeting", "en-US/a.properties", "en-US/sub", "en-US/root",
	}, rem)

	assert.Empty(t, master.Twins())
	assert.Nil(t, twin.DefaultTwin())
	assert.False(t, s.InTransaction())
}

func TestRemoveDetachesFromParent(t *testing.T) {
	coord, s := newTestCoordinator(t)
	root := domain.NewLocaleContainer("root", "en-US")
	sub := domain.NewLocaleContainer("sub", "en-US")
	root.AddContainer(sub)

	require.True(t, coord.Containers.RemoveRecursively(context.Background(), sub))
	assert.Empty(t, root.Containers())
	assert.Equal(t, []string{"en-US/sub"}, s.removals())
}

func TestRemovePreservesCallerTransaction(t *testing.T) {
	coord, s := newTestCoordinator(t)
	master, _ := twinTree(t)

	ctx := context.Background()
	require.NoError(t, s.Begin(ctx))
	require.True(t, coord.Containers.RemoveRecursively(ctx, master))

	// The adapter rode the caller's transaction: no commit was issued and the
	// transaction is still open.
	assert.True(t, s.InTransaction())
	for _, e := range s.events {
		assert.NotEqual(t, "commit", e)
	}
}

func TestRemoveBatchCommits(t *testing.T) {
	coord, s := newTestCoordinator(t)
	root := domain.NewLocaleContainer("big", "en-US")
	for i := 0; i < batchSize+10; i++ {
		root.AddFile(domain.NewLocaleFile(fmt.Sprintf("f%03d.txt", i), "en-US", domain.FileText))
	}

	require.True(t, coord.Containers.RemoveRecursively(context.Background(), root))

	commits := 0
	for _, e := range s.events {
		if e == "commit" {
			commits++
		}
	}
	// One mid-run batch commit plus the final one.
	assert.Equal(t, 2, commits)
	assert.False(t, s.InTransaction())
}

func TestRemoveFailureRollsBackAndRestoresState(t *testing.T) {
	coord, s := newTestCoordinator(t)
	s.failRemoveName = "a.properties"
	master, _ := twinTree(t)

	ctx := context.Background()
	require.False(t, coord.Containers.RemoveRecursively(ctx, master))
	assert.Contains(t, s.events, "rollback")
	assert.False(t, s.InTransaction())

	// With the caller holding the transaction the batch is rolled back but a
	// fresh transaction is reopened for the caller.
	s2 := &fakeSession{failRemoveName: "a.properties"}
	coord2 := NewCoordinator(s2)
	master2, _ := twinTree(t)
	require.NoError(t, s2.Begin(ctx))
	require.False(t, coord2.Containers.RemoveRecursively(ctx, master2))
	assert.True(t, s2.InTransaction())
}

func TestEnsureTwinCascades(t *testing.T) {
	coord, s := newTestCoordinator(t)
	root := domain.NewLocaleContainer("root", "en-US")
	sub := domain.NewLocaleContainer("sub", "en-US")
	root.AddContainer(sub)
	f := domain.NewLocaleFile("a.properties", "en-US", domain.FileKeyValue)
	sub.AddFile(f)
	// Only the root has an es-ES twin up front.
	rootT := domain.NewLocaleContainer("root", "es-ES")
	require.NoError(t, rootT.SetDefaultTwin(root))

	ctx := context.Background()
	twin, err := coord.Files.EnsureTwin(ctx, f, "es-ES")
	require.NoError(t, err)
	require.NotNil(t, twin)
	assert.Equal(t, "es-ES", twin.Locale())
	assert.Equal(t, domain.FileKeyValue, twin.FileKind())
	assert.Same(t, f, twin.DefaultTwin().(*domain.LocaleFile))

	// The intermediate container twin was created and hung under the root twin.
	subT := rootT.ContainerByName("sub")
	require.NotNil(t, subT)
	assert.Same(t, subT, twin.ParentContainer())
	assert.Equal(t, []string{"persist:es-ES/sub", "persist:es-ES/a.properties"}, s.events)

	// Idempotent: a second call resolves the existing twin without persisting.
	again, err := coord.Files.EnsureTwin(ctx, f, "es-ES")
	require.NoError(t, err)
	assert.Same(t, twin, again)
	assert.Len(t, s.events, 2)
}

func TestEnsureTwinRequiresTwinRoot(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	root := domain.NewLocaleContainer("root", "en-US")
	_, err := coord.Containers.EnsureTwin(context.Background(), root, "es-ES")
	require.Error(t, err)
}

func TestCreateTwinRecursively(t *testing.T) {
	coord, s := newTestCoordinator(t)
	root := domain.NewLocaleContainer("root", "en-US")
	f := domain.NewLocaleFile("a.properties", "en-US", domain.FileKeyValue)
	root.AddFile(f)
	ct := domain.NewLocaleContent("greeting", "en-US", domain.ContentKeyValue)
	ct.TextValue = "Hello"
	ct.OrderInFile = 3
	f.AddContent(ct)
	rootT := domain.NewLocaleContainer("root", "es-ES")
	require.NoError(t, rootT.SetDefaultTwin(root))

	ctx := context.Background()
	require.True(t, coord.Contents.CreateTwinRecursively(ctx, ct, "es-ES", false))

	twin, ok := ct.TwinForLocale("es-ES").(*domain.LocaleContent)
	require.True(t, ok)
	assert.Equal(t, "greeting", twin.Name())
	assert.Equal(t, 3, twin.OrderInFile)
	assert.Equal(t, domain.ContentKeyValue, twin.ContentKind())
	// Structural copy only: no translated text yet.
	assert.Empty(t, twin.TextValue)
	require.NotNil(t, twin.ParentFile())
	assert.Equal(t, "es-ES", twin.ParentFile().Locale())

	// No caller transaction was open, so the helper committed its own.
	assert.False(t, s.InTransaction())
	assert.Contains(t, s.events, "commit")

	// Idempotent success.
	events := len(s.events)
	require.True(t, coord.Contents.CreateTwinRecursively(ctx, ct, "es-ES", false))
	assert.Len(t, s.events, events)
}

func TestCreateTwinRejectsNonMaster(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	master := domain.NewLocaleContent("greeting", "en-US", domain.ContentKeyValue)
	f := domain.NewLocaleFile("a.properties", "en-US", domain.FileKeyValue)
	f.AddContent(master)
	twin := domain.NewLocaleContent("greeting", "es-ES", domain.ContentKeyValue)
	require.NoError(t, twin.SetDefaultTwin(master))

	assert.False(t, coord.Contents.CreateTwinRecursively(context.Background(), twin, "fr-FR", false))
}

func TestCreateTwinRidesOpenTransaction(t *testing.T) {
	coord, s := newTestCoordinator(t)
	root := domain.NewLocaleContainer("root", "en-US")
	f := domain.NewLocaleFile("a.properties", "en-US", domain.FileKeyValue)
	root.AddFile(f)
	ct := domain.NewLocaleContent("greeting", "en-US", domain.ContentKeyValue)
	f.AddContent(ct)
	rootT := domain.NewLocaleContainer("root", "es-ES")
	require.NoError(t, rootT.SetDefaultTwin(root))

	ctx := context.Background()
	require.NoError(t, s.Begin(ctx))
	require.True(t, coord.Contents.CreateTwinRecursively(ctx, ct, "es-ES", false))
	// commitOnSuccess unset: the caller's transaction is still the open one.
	assert.True(t, s.InTransaction())
	assert.NotContains(t, s.events, "commit")

	rootF := domain.NewLocaleContainer("root", "fr-FR")
	require.NoError(t, rootF.SetDefaultTwin(root))
	require.True(t, coord.Contents.CreateTwinRecursively(ctx, ct, "fr-FR", true))
	// commitOnSuccess set: the batch was committed and the caller's
	// transaction state restored.
	assert.True(t, s.InTransaction())
	assert.Contains(t, s.events, "commit")
}
